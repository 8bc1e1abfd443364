// Package result contains results that are used to write out API responses.
package result

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the body of every error response sent by the API.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// splitMsg turns the optional trailing internalMsg args of the constructors in
// this package into a format string and its arguments.
func splitMsg(def string, internalMsg []interface{}) (string, []interface{}) {
	if len(internalMsg) < 1 {
		return def, nil
	}
	return internalMsg[0].(string), internalMsg[1:]
}

// OK returns a Result containing an HTTP-200 along with a more detailed
// message (if desired; if none is provided it defaults to a generic one) that
// is not displayed to the user.
func OK(respObj interface{}, internalMsg ...interface{}) Result {
	msgFmt, args := splitMsg("OK", internalMsg)
	return Response(http.StatusOK, respObj, msgFmt, args...)
}

// NoContent returns a Result containing an HTTP-204.
func NoContent(internalMsg ...interface{}) Result {
	msgFmt, args := splitMsg("no content", internalMsg)
	return Response(http.StatusNoContent, nil, msgFmt, args...)
}

// Created returns a Result containing an HTTP-201.
func Created(respObj interface{}, internalMsg ...interface{}) Result {
	msgFmt, args := splitMsg("created", internalMsg)
	return Response(http.StatusCreated, respObj, msgFmt, args...)
}

// Conflict returns a Result containing an HTTP-409 that shows userMsg to the
// client.
func Conflict(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, args := splitMsg("conflict", internalMsg)
	return Err(http.StatusConflict, userMsg, msgFmt, args...)
}

// BadRequest returns a Result containing an HTTP-400 that shows userMsg to the
// client.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, args := splitMsg("bad request", internalMsg)
	return Err(http.StatusBadRequest, userMsg, msgFmt, args...)
}

// MethodNotAllowed returns a Result containing an HTTP-405.
func MethodNotAllowed(req *http.Request, internalMsg ...interface{}) Result {
	msgFmt, args := splitMsg("method not allowed", internalMsg)
	userMsg := fmt.Sprintf("Method %s is not allowed for %s", req.Method, req.URL.Path)
	return Err(http.StatusMethodNotAllowed, userMsg, msgFmt, args...)
}

// NotFound returns a Result containing an HTTP-404.
func NotFound(internalMsg ...interface{}) Result {
	msgFmt, args := splitMsg("not found", internalMsg)
	return Err(http.StatusNotFound, "The requested resource was not found", msgFmt, args...)
}

// Forbidden returns a Result containing an HTTP-403.
func Forbidden(internalMsg ...interface{}) Result {
	msgFmt, args := splitMsg("forbidden", internalMsg)
	return Err(http.StatusForbidden, "You don't have permission to do that", msgFmt, args...)
}

// Unauthorized returns a Result containing an HTTP-401 response along with the
// proper WWW-Authenticate header. If userMsg is empty a generic message is
// used.
func Unauthorized(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, args := splitMsg("unauthorized", internalMsg)
	if userMsg == "" {
		userMsg = "You are not authorized to do that"
	}

	return Err(http.StatusUnauthorized, userMsg, msgFmt, args...).
		WithHeader("WWW-Authenticate", `Bearer realm="vadm", charset="utf-8"`)
}

// InternalServerError returns a Result containing an HTTP-500 response. The
// detailed message is only logged.
func InternalServerError(internalMsg ...interface{}) Result {
	msgFmt, args := splitMsg("internal server error", internalMsg)
	return Err(http.StatusInternalServerError, "An internal server error occurred", msgFmt, args...)
}

// Response returns a successful JSON Result. If status is http.StatusNoContent,
// respObj will not be read and may be nil.
func Response(status int, respObj interface{}, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        respObj,
	}
}

// Bytes returns an HTTP-200 Result whose body is data sent as-is with the
// given content type.
func Bytes(data []byte, contentType string, internalMsg ...interface{}) Result {
	msgFmt, args := splitMsg("OK", internalMsg)
	return Result{
		Status:      http.StatusOK,
		InternalMsg: fmt.Sprintf(msgFmt, args...),
		raw:         data,
		contentType: contentType,
	}
}

// Err returns a JSON error Result.
func Err(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp: ErrorResponse{
			Error:  userMsg,
			Status: status,
		},
	}
}

// TextErr is like Err but it avoids JSON encoding of any kind and writes the
// output as plain text.
func TextErr(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		raw:         []byte(userMsg),
		contentType: "text/plain; charset=utf-8",
	}
}

type Result struct {
	Status      int
	IsErr       bool
	IsJSON      bool
	InternalMsg string

	resp        interface{}
	raw         []byte
	contentType string
	hdrs        [][2]string

	// set by calling PrepareMarshaledResponse.
	respJSONBytes []byte
}

func (r Result) WithHeader(name, val string) Result {
	hdrs := make([][2]string, len(r.hdrs), len(r.hdrs)+1)
	copy(hdrs, r.hdrs)
	r.hdrs = append(hdrs, [2]string{name, val})
	return r
}

// PrepareMarshaledResponse marshals the response object if the Result is a
// JSON one with a body. Calling it again after it has succeeded has no effect.
func (r *Result) PrepareMarshaledResponse() error {
	if r.respJSONBytes != nil {
		return nil
	}

	if r.IsJSON && r.Status != http.StatusNoContent {
		var err error
		r.respJSONBytes, err = json.Marshal(r.resp)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r Result) WriteResponse(w http.ResponseWriter) {
	// if this hasn't been properly created, panic
	if r.Status == 0 {
		panic("result not populated")
	}

	err := r.PrepareMarshaledResponse()
	if err != nil {
		panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
	}

	respBytes := r.raw
	if r.IsJSON {
		w.Header().Set("Content-Type", "application/json")
		respBytes = r.respJSONBytes
	} else if r.contentType != "" {
		w.Header().Set("Content-Type", r.contentType)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")

	for i := range r.hdrs {
		w.Header().Set(r.hdrs[i][0], r.hdrs[i][1])
	}

	w.WriteHeader(r.Status)

	if r.Status != http.StatusNoContent {
		w.Write(respBytes)
	}
}

// Package apitest provides a scriptable stand-in for the backend API for use
// in tests. Handlers are registered per route and every request received is
// recorded so tests can check what was (or was not) sent.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Request is a request received by a Backend.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Backend is an httptest server routing requests under /api to registered
// handlers. Unregistered routes get a 404 JSON error.
type Backend struct {
	srv    *httptest.Server
	router chi.Router

	mtx  sync.Mutex
	reqs []Request
}

// New starts a Backend. It is shut down when the test finishes.
func New(t *testing.T) *Backend {
	b := &Backend{router: chi.NewRouter()}
	b.router.NotFound(func(w http.ResponseWriter, req *http.Request) {
		Error(http.StatusNotFound, "not found")(w, req)
	})

	b.srv = httptest.NewServer(http.StripPrefix("/api", http.HandlerFunc(b.serve)))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *Backend) serve(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	req.Body.Close()

	b.mtx.Lock()
	b.reqs = append(b.reqs, Request{
		Method: req.Method,
		Path:   req.URL.Path,
		Header: req.Header.Clone(),
		Body:   body,
	})
	b.mtx.Unlock()

	req.Body = io.NopCloser(bytes.NewReader(body))
	b.router.ServeHTTP(w, req)
}

// URL returns the API base URL to give to a client.
func (b *Backend) URL() string {
	return b.srv.URL + "/api"
}

// On routes requests matching method and the chi pattern to h. Routes must be
// registered before requests are made.
func (b *Backend) On(method, pattern string, h http.HandlerFunc) {
	b.router.Method(method, pattern, h)
}

// Requests returns every request received so far.
func (b *Backend) Requests() []Request {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	reqs := make([]Request, len(b.reqs))
	copy(reqs, b.reqs)
	return reqs
}

// Count returns how many requests were received with the given method and
// path.
func (b *Backend) Count(method, path string) int {
	var n int
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request with the given method and path, and
// whether there was one.
func (b *Backend) Last(method, path string) (Request, bool) {
	reqs := b.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return Request{}, false
}

// JSON returns a handler that always responds with v encoded as JSON.
func JSON(status int, v interface{}) http.HandlerFunc {
	data, err := json.Marshal(v)
	if err != nil {
		panic("apitest: " + err.Error())
	}
	return Raw(status, "application/json", data)
}

// Raw returns a handler that always responds with data as-is.
func Raw(status int, contentType string, data []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		w.Write(data)
	}
}

// Error returns a handler that responds with a backend-style JSON error.
func Error(status int, msg string) http.HandlerFunc {
	return JSON(status, map[string]interface{}{"error": msg, "status": status})
}

// NoContent returns a handler that responds with an HTTP-204.
func NoContent() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// Echo returns a handler that responds with the request body, as an update
// endpoint that accepts everything would.
func Echo(status int, extra map[string]interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body map[string]interface{}
		data, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(data, &body)
		if body == nil {
			body = map[string]interface{}{}
		}
		for k, v := range extra {
			body[k] = v
		}
		JSON(status, body)(w, req)
	}
}


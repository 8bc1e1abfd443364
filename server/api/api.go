// Package api provides the HTTP API endpoints of the VidAdmin reference
// backend.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dekarrin/vadm/internal/serr"
	"github.com/dekarrin/vadm/server/dao"
	"github.com/dekarrin/vadm/server/middle"
	"github.com/dekarrin/vadm/server/result"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// PathPrefix is the prefix of all paths in the API. Routers should mount
	// a sub-router that routes all requests to the API at this path.
	PathPrefix = "/api"
)

// API holds parameters for endpoints needed to run and the store they operate
// on. To use API, create one and then assign the result of its HTTP* methods
// as handlers to a router, or mount Router.
type API struct {
	// Store holds all users and videos.
	Store dao.Store

	// UnauthDelay is the amount of time that a request will pause before
	// responding with an HTTP-403, HTTP-401, or HTTP-500 to deprioritize such
	// requests from processing and I/O.
	UnauthDelay time.Duration

	// Secret is the secret used to sign JWT tokens.
	Secret []byte

	// Log receives a line for every response. Handlers prefer the
	// request-scoped logger set by middle.LogRequests when there is one.
	Log zerolog.Logger
}

// Router returns a chi router with every endpoint of the API registered
// relative to PathPrefix.
func (api API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middle.LogRequests(api.Log))

	reqAuth := middle.RequireAuth(api.Store.Users(), api.Secret, api.UnauthDelay)
	optAuth := middle.OptionalAuth(api.Store.Users(), api.Secret, api.UnauthDelay)

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		result.MethodNotAllowed(req).WriteResponse(w)
	})
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		result.NotFound("no route for %s %s", req.Method, req.URL.Path).WriteResponse(w)
	})

	r.With(optAuth).Get("/info", api.HTTPGetInfo())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", api.HTTPLogin())
		r.With(optAuth).Post("/register", api.HTTPRegister())
		r.With(reqAuth).Post("/refresh", api.HTTPRefresh())
		r.With(reqAuth).Post("/logout", api.HTTPLogout())
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(reqAuth)
		r.Get("/", api.HTTPGetAllUsers())
		r.Put("/{id}", api.HTTPUpdateUser())
		r.Delete("/{id}", api.HTTPDeleteUser())
	})

	r.Route("/dashboard/videos", func(r chi.Router) {
		r.Use(reqAuth)
		r.Get("/", api.HTTPGetAllVideos())
		r.Delete("/{id}", api.HTTPDeleteVideo())
		r.Get("/{id}/report", api.HTTPGetDashboardReport())
	})

	r.Route("/videos", func(r chi.Router) {
		r.Use(reqAuth)
		r.Get("/history", api.HTTPGetHistory())
		r.Get("/{id}/processed", api.HTTPGetProcessed())
		r.Get("/{id}/report", api.HTTPGetHistoryReport())
	})

	return r
}

// requireIDParam gets the ID of the main entity being referenced in the URI.
// The returned error matches serr.ErrBadArgument if the ID is not a UUID.
func requireIDParam(r *http.Request) (uuid.UUID, error) {
	return getURLParam(r, "id", uuid.Parse)
}

func getURLParam[E any](r *http.Request, key string, parse func(string) (E, error)) (val E, err error) {
	valStr := chi.URLParam(r, key)
	if valStr == "" {
		// either it does not exist or it is nil; treat both as the same and
		// return an error
		return val, fmt.Errorf("parameter does not exist")
	}

	val, err = parse(valStr)
	if err != nil {
		return val, serr.New(key+": not a valid ID", serr.ErrBadArgument)
	}
	return val, nil
}

// authUser returns the logged-in user placed in the request context by the
// auth middleware.
func authUser(req *http.Request) dao.User {
	user, _ := req.Context().Value(middle.AuthUser).(dao.User)
	return user
}

// v must be a pointer to a type. Will return error such that
// errors.Is(err, serr.ErrBodyUnmarshal) returns true if it is problem decoding
// the JSON itself.
func parseJSON(req *http.Request, v interface{}) error {
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	err = json.Unmarshal(bodyData, v)
	if err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}

	return nil
}

// storeErr converts an error from the dao layer into a Result.
func storeErr(err error, what string) result.Result {
	if errors.Is(err, dao.ErrNotFound) {
		return result.NotFound("%s: %s", what, err.Error())
	}
	if errors.Is(err, dao.ErrConstraintViolation) {
		return result.Conflict("A resource with that identifying information already exists", "%s: %s", what, err.Error())
	}
	return result.InternalServerError("%s: %s", what, err.Error())
}

type EndpointFunc func(req *http.Request) result.Result

func (api API) endpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		log := api.logger(req)
		defer panicTo500(w, log)
		r := ep(req)

		// if this hasn't been properly created, output error directly and do not
		// try to read properties
		if r.Status == 0 {
			log.Error().Int("status", http.StatusInternalServerError).Msg("endpoint result was never populated")
			http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
			return
		}

		// pre-call PrepareMarshaledResponse bc if it fails in call to
		// WriteResponse, it will panic.
		if err := r.PrepareMarshaledResponse(); err != nil {
			newResp := result.InternalServerError("could not marshal JSON response: " + err.Error())
			log.Error().Int("status", newResp.Status).Msg(newResp.InternalMsg)
			newResp.WriteResponse(w)
			return
		}

		evt := log.Info()
		if r.IsErr {
			evt = log.Error()
			if r.Status < 500 {
				evt = log.Warn()
			}
		}
		evt.Int("status", r.Status).Msg(r.InternalMsg)

		if r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden || r.Status == http.StatusInternalServerError {
			// if it's one of these statusus, either the user is improperly
			// logging in or tried to access a forbidden resource, both of which
			// should force the wait time before responding.
			time.Sleep(api.UnauthDelay)
		}

		r.WriteResponse(w)
	}
}

func (api API) logger(req *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(req.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &api.Log
}

func panicTo500(w http.ResponseWriter, log *zerolog.Logger) {
	if panicErr := recover(); panicErr != nil {
		log.Error().
			Str("stack", string(debug.Stack())).
			Msgf("panic: %v", panicErr)
		result.TextErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			"panic: %v", panicErr,
		).WriteResponse(w)
	}
}

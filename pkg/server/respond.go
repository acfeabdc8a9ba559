package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/graph"
)

// maxBodyBytes caps request bodies, including loaded documents.
const maxBodyBytes = 16 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch nferrors.GetCode(err) {
	case nferrors.ErrCodeSchema, nferrors.ErrCodeInvalidInput, nferrors.ErrCodeDuplicateID, nferrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case nferrors.ErrCodeNotFound, nferrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case nferrors.ErrCodeUnknownEndpoint:
		return http.StatusUnprocessableEntity
	case nferrors.ErrCodeClipboardUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := nferrors.GetCode(err)
	if code == "" {
		code = nferrors.ErrCodeInternal
	}
	writeJSON(w, StatusFor(err), ErrorResponse{
		Error:   string(code),
		Message: nferrors.UserMessage(err),
	})
}

// checker is implemented by request bodies with rules beyond their tags.
type checker interface {
	check() error
}

// decode reads a JSON body into v and checks its validate tags, then its
// own identifier rules.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return nferrors.Wrap(nferrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	if err := graph.ValidateStruct(v); err != nil {
		return nferrors.Wrap(nferrors.ErrCodeInvalidInput, err, "%s", err.Error())
	}
	if c, ok := v.(checker); ok {
		return c.check()
	}
	return nil
}

// observe logs every request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		s.hooks.OnResponse(r.Context(), r.Method, route, status, dur)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", dur,
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

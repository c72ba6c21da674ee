// Package respond provides utilities for sending HTTP responses in JSON format.
// It maps domain errors to status codes and sanitizes anything that could leak
// internal details before it reaches a client or a log line.
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"

	"article-service/internal/domain/entity"
	"article-service/internal/observability/logging"
)

// internalMessage is the only text a client ever sees for a 5xx response.
const internalMessage = "internal server error"

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	b, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		// Headers are already sent; the best we can do is log it.
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
		return
	}
	_, _ = w.Write(append(b, '\n'))
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorBody{Error: msg})
}

// NoContent writes an empty response with the given status code.
func NoContent(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
}

// StatusFor returns the HTTP status code a domain error maps to.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the response for err.
//
// Validation errors carry their field name, not-found and conflict errors
// their message. Anything else is logged (sanitized) and reported as a
// generic 500 so driver or network details never reach the client.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("internal server error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", SanitizeError(err)))
		Error(w, code, internalMessage)
		return
	}

	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		JSON(w, code, ErrorBody{Error: verr.Message, Field: verr.Field})
		return
	}
	Error(w, code, err.Error())
}

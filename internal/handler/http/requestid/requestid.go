// Package requestid tags every request with an ID that is echoed to the
// client and attached to each log line for that request.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Client IDs longer than this are replaced rather than logged.
const maxLen = 128

type ctxKey struct{}

// FromContext returns the request ID, or "" outside a request.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Middleware reuses a well-formed X-Request-ID from the client and otherwise
// mints a UUID v4.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !acceptable(id) {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// acceptable allows 1..maxLen bytes of [A-Za-z0-9._-] so an ID cannot forge
// log fields or smuggle control characters.
func acceptable(id string) bool {
	if len(id) == 0 || len(id) > maxLen {
		return false
	}
	for _, c := range []byte(id) {
		ok := 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
			c == '-' || c == '_' || c == '.'
		if !ok {
			return false
		}
	}
	return true
}

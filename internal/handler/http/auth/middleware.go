// Package auth guards the article routes with a shared-secret API key.
package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"article-service/internal/handler/http/respond"
	"article-service/internal/observability/logging"
)

// APIKeyHeader carries the shared secret.
const APIKeyHeader = "X-API-Key"

// unauthorizedMessage is returned for both a missing and a wrong key so the
// response does not reveal which one it was.
const unauthorizedMessage = "Invalid or missing API Key"

// APIKey returns middleware that requires the X-API-Key header to equal key.
//
// An empty key disables the check entirely (development mode). Public
// endpoints are always let through. The comparison runs in constant time.
func APIKey(key string) func(http.Handler) http.Handler {
	expected := []byte(key)
	return func(next http.Handler) http.Handler {
		if len(expected) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(APIKeyHeader)
			if provided == "" {
				recordAPIKeyCheck("missing")
				reject(w, r, "missing")
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
				recordAPIKeyCheck("invalid")
				reject(w, r, "invalid")
				return
			}

			recordAPIKeyCheck("success")
			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, reason string) {
	logging.FromContext(r.Context()).Info("api key rejected",
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))
	respond.Error(w, http.StatusUnauthorized, unauthorizedMessage)
}

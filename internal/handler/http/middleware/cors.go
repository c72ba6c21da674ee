package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSConfig is the cross-origin policy for browser clients.
type CORSConfig struct {
	// AllowedOrigins may contain "*" to admit any origin.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	// MaxAge is how long a browser may cache a preflight answer.
	MaxAge time.Duration
	Logger *slog.Logger
}

// corsExposedHeaders are readable by scripts on a cross-origin response.
var corsExposedHeaders = strings.Join([]string{
	"X-Request-ID",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
	"Retry-After",
}, ", ")

// CORS returns the cross-origin middleware. It must run outside the rate
// limiter and the API key gate so preflight requests are answered without
// a key and without spending the client's budget.
//
// An allowed origin is echoed back with credentials enabled. A preflight
// (OPTIONS with Access-Control-Request-Method) from an allowed origin is
// answered 204 here. Requests from other origins pass through untouched and
// the browser withholds the response.
func CORS(cfg CORSConfig) (func(http.Handler) http.Handler, error) {
	allow, err := NewOriginAllowlist(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge / time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			if !allow.IsAllowed(origin) {
				logger.Warn("cors: origin not allowed",
					slog.String("origin", origin),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			h.Set("Access-Control-Expose-Headers", corsExposedHeaders)
			next.ServeHTTP(w, r)
		})
	}, nil
}

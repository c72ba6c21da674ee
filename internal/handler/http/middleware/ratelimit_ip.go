package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"article-service/internal/handler/http/pathutil"
	"article-service/internal/handler/http/respond"
	"article-service/pkg/ratelimit"
)

// LimiterTypeIP labels metrics and headers produced by IPRateLimiter.
const LimiterTypeIP = "ip"

// RateLimitExceededBody is the 429 response body.
type RateLimitExceededBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int64  `json:"retry_after"`
}

// IPRateLimiter counts requests per client IP in fixed windows.
//
// When the counter store cannot be reached the request is admitted: the
// limiter protects the service but must never take it down.
type IPRateLimiter struct {
	config      ratelimit.RateLimitConfig
	ipExtractor IPExtractor
	store       ratelimit.CounterStore
	algorithm   ratelimit.RateLimitAlgorithm
	metrics     ratelimit.RateLimitMetrics
	logger      *slog.Logger
	skip        func(path string) bool
}

// NewIPRateLimiter creates a new IP-based rate limiter middleware.
// Requests for which skip returns true are never counted; a nil skip counts
// everything. Pass the same predicate the API key gate uses so both agree on
// which paths are public.
func NewIPRateLimiter(
	config ratelimit.RateLimitConfig,
	ipExtractor IPExtractor,
	store ratelimit.CounterStore,
	algorithm ratelimit.RateLimitAlgorithm,
	metrics ratelimit.RateLimitMetrics,
	logger *slog.Logger,
	skip func(path string) bool,
) *IPRateLimiter {
	if config.Limit <= 0 {
		config.Limit = ratelimit.DefaultLimit
	}
	if config.Window <= 0 {
		config.Window = ratelimit.DefaultWindow
	}
	if ipExtractor == nil {
		ipExtractor = &RemoteAddrExtractor{}
	}
	if metrics == nil {
		metrics = ratelimit.NewNoOpMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}

	if skip == nil {
		skip = func(string) bool { return false }
	}

	return &IPRateLimiter{
		config:      config,
		ipExtractor: ipExtractor,
		store:       store,
		algorithm:   algorithm,
		metrics:     metrics,
		logger:      logger,
		skip:        skip,
	}
}

// Middleware returns an HTTP middleware function that enforces IP-based rate limiting.
//
// Response headers on counted requests:
//   - X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset (Unix seconds)
//   - Retry-After, only on 429
func (rl *IPRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}
			if rl.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			endpoint := pathutil.NormalizePath(r.URL.Path)

			ip, err := rl.ipExtractor.ExtractIP(r)
			if err != nil {
				rl.logger.Warn("rate limiter: cannot identify client, allowing request",
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("path", endpoint),
					slog.Any("error", err))
				rl.metrics.RecordFailOpen(LimiterTypeIP, endpoint)
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			decision, err := rl.algorithm.IsAllowed(r.Context(), rl.config.KeyPrefix+ip, rl.store, rl.config.Limit, rl.config.Window)
			rl.metrics.RecordCheckDuration(LimiterTypeIP, time.Since(start))

			if err != nil {
				rl.logger.Warn("rate limiter: counter store unavailable, allowing request",
					slog.String("ip", ip),
					slog.String("path", endpoint),
					slog.Any("error", err))
				rl.metrics.RecordFailOpen(LimiterTypeIP, endpoint)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, decision)

			if !decision.Allowed {
				rl.metrics.RecordDenied(LimiterTypeIP, endpoint)
				rl.logger.Info("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", endpoint),
					slog.Int64("count", decision.Count),
					slog.Int("limit", decision.Limit))
				writeRateLimitExceeded(w, decision)
				return
			}

			rl.metrics.RecordAllowed(LimiterTypeIP, endpoint)
			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, decision *ratelimit.RateLimitDecision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAtUnix(), 10))
}

// writeRateLimitExceeded writes the 429 response:
//
//	{
//	  "error": "rate_limit_exceeded",
//	  "message": "Too many requests. Retry after 60 seconds.",
//	  "retry_after": 60
//	}
func writeRateLimitExceeded(w http.ResponseWriter, decision *ratelimit.RateLimitDecision) {
	retryAfter := decision.RetryAfterSeconds()
	w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
	respond.JSON(w, http.StatusTooManyRequests, RateLimitExceededBody{
		Error:      "rate_limit_exceeded",
		Message:    fmt.Sprintf("Too many requests. Retry after %d seconds.", retryAfter),
		RetryAfter: retryAfter,
	})
}

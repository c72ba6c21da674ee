// Package circuitbreaker guards calls to optional backends with
// github.com/sony/gobreaker so a dead backend fails fast instead of adding
// its timeout to every request.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"article-service/internal/observability/metrics"
)

// Config describes when the breaker trips and how it recovers.
type Config struct {
	Name string

	// MaxRequests is how many trial calls pass while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts; zero never clears them.
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration

	// FailureRatio trips the breaker once reached, after MinRequests calls.
	FailureRatio float64
	MinRequests  uint32
}

// CacheConfig is tuned for the Redis cache: trip after half of at least five
// calls fail, retry after five seconds.
func CacheConfig() Config {
	return Config{
		Name:         "redis-cache",
		MaxRequests:  1,
		Interval:     10 * time.Second,
		OpenTimeout:  5 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

func New(cfg Config) *CircuitBreaker {
	metrics.RecordCircuitState(cfg.Name, int(gobreaker.StateClosed))

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		// A caller that went away says nothing about the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitState(name, int(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Do runs fn through the breaker. While open it returns
// gobreaker.ErrOpenState without calling fn.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

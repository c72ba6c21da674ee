package ratelimit

import (
	"context"
	"time"
)

// CounterStore holds fixed-window counters.
//
// IncrementAndExpire must, as one atomic unit, increment the counter under key,
// start its expiry of window when the key is new, and return the resulting
// count together with the time left until the window closes.
type CounterStore interface {
	IncrementAndExpire(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RateLimitAlgorithm decides whether a request may proceed.
type RateLimitAlgorithm interface {
	// IsAllowed counts one request for key against limit per window.
	// The error is non-nil only when the store could not be consulted.
	IsAllowed(ctx context.Context, key string, store CounterStore, limit int, window time.Duration) (*RateLimitDecision, error)
}

// RateLimitMetrics records rate limiting outcomes.
type RateLimitMetrics interface {
	RecordAllowed(limiterType, endpoint string)
	RecordDenied(limiterType, endpoint string)
	// RecordFailOpen records a request admitted because the store failed.
	RecordFailOpen(limiterType, endpoint string)
	RecordCheckDuration(limiterType string, duration time.Duration)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real Clock.
type SystemClock struct{}

func (c *SystemClock) Now() time.Time {
	return time.Now()
}

package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// FixedWindowAlgorithm admits up to limit requests per key per window.
// The window starts at the first request for a key and is not extended by later ones.
type FixedWindowAlgorithm struct {
	clock       Clock
	limiterType string
}

// NewFixedWindowAlgorithm returns the algorithm. A nil clock uses SystemClock.
func NewFixedWindowAlgorithm(clock Clock, limiterType string) *FixedWindowAlgorithm {
	if clock == nil {
		clock = &SystemClock{}
	}
	return &FixedWindowAlgorithm{clock: clock, limiterType: limiterType}
}

// IsAllowed increments the counter for key and denies once the count exceeds limit.
// ResetAt is when the current window closes; a denied request is still told
// to retry after the full window length.
func (a *FixedWindowAlgorithm) IsAllowed(ctx context.Context, key string, store CounterStore, limit int, window time.Duration) (*RateLimitDecision, error) {
	count, ttl, err := store.IncrementAndExpire(ctx, key, window)
	if err != nil {
		return nil, fmt.Errorf("fixed window: %w", err)
	}

	if ttl <= 0 || ttl > window {
		ttl = window
	}

	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}

	d := &RateLimitDecision{
		Key:         key,
		Allowed:     count <= int64(limit),
		Limit:       limit,
		Remaining:   int(remaining),
		Count:       count,
		ResetAt:     a.clock.Now().Add(ttl),
		LimiterType: a.limiterType,
	}
	if !d.Allowed {
		d.RetryAfter = window
	}
	return d, nil
}

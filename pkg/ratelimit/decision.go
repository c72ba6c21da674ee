package ratelimit

import (
	"fmt"
	"time"
)

// RateLimitDecision is the verdict for one request and the data needed for
// the X-RateLimit-* and Retry-After headers.
type RateLimitDecision struct {
	Key         string
	Allowed     bool
	Limit       int
	Remaining   int
	Count       int64
	ResetAt     time.Time
	RetryAfter  time.Duration
	LimiterType string
}

func (d *RateLimitDecision) String() string {
	if d.Allowed {
		return fmt.Sprintf("RateLimitDecision{Allowed: true, Key: %s, Type: %s, Remaining: %d/%d}",
			d.Key, d.LimiterType, d.Remaining, d.Limit)
	}
	return fmt.Sprintf("RateLimitDecision{Allowed: false, Key: %s, Type: %s, Count: %d/%d, RetryAfter: %s}",
		d.Key, d.LimiterType, d.Count, d.Limit, d.RetryAfter)
}

// ResetAtUnix returns ResetAt as a Unix timestamp.
func (d *RateLimitDecision) ResetAtUnix() int64 {
	return d.ResetAt.Unix()
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds, never negative.
func (d *RateLimitDecision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int64((d.RetryAfter + time.Second - 1) / time.Second)
}

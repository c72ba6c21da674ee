package ratelimit

import (
	"fmt"
	"time"
)

// Defaults for the per-client limiter.
const (
	DefaultLimit     = 20
	DefaultWindow    = 60 * time.Second
	DefaultKeyPrefix = "ratelimit:"
)

// RateLimitConfig configures a fixed-window limiter.
type RateLimitConfig struct {
	Enabled bool
	// Limit is the maximum number of requests admitted per window.
	Limit int
	// Window is the fixed window length; it is also the Retry-After hint.
	Window time.Duration
	// KeyPrefix namespaces counters in the shared store.
	KeyPrefix string
}

// DefaultConfig returns 20 requests per 60 seconds.
func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:   true,
		Limit:     DefaultLimit,
		Window:    DefaultWindow,
		KeyPrefix: DefaultKeyPrefix,
	}
}

// Validate rejects non-positive limits and windows.
func (c RateLimitConfig) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", c.Limit)
	}
	if c.Window < time.Second {
		return fmt.Errorf("rate limit window must be at least 1s, got %s", c.Window)
	}
	return nil
}

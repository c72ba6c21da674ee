package ratelimit

import (
	"context"
	"sync"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingStore struct{ err error }

func (s failingStore) IncrementAndExpire(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, s.err
}

type fixedStore struct {
	count int64
	ttl   time.Duration
}

func (s fixedStore) IncrementAndExpire(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return s.count, s.ttl, nil
}

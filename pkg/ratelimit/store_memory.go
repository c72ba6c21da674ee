package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryCounterStore is an in-process CounterStore.
// Counters are not shared between instances, so it only suits a single
// process or tests.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	clock    Clock
}

type windowCounter struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryCounterStore creates an empty store. A nil clock uses SystemClock.
func NewMemoryCounterStore(clock Clock) *MemoryCounterStore {
	if clock == nil {
		clock = &SystemClock{}
	}
	return &MemoryCounterStore{
		counters: make(map[string]*windowCounter),
		clock:    clock,
	}
}

// IncrementAndExpire implements CounterStore.
func (s *MemoryCounterStore) IncrementAndExpire(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		c = &windowCounter{expiresAt: now.Add(window)}
		s.counters[key] = c
	}
	c.count++
	return c.count, c.expiresAt.Sub(now), nil
}

// Cleanup drops expired counters and returns how many were removed.
func (s *MemoryCounterStore) Cleanup() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, c := range s.counters {
		if !now.Before(c.expiresAt) {
			delete(s.counters, key)
			removed++
		}
	}
	return removed
}

// KeyCount returns the number of tracked keys, expired or not.
func (s *MemoryCounterStore) KeyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

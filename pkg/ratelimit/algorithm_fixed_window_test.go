package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindow_TwentyOneRequests(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryCounterStore(clock)
	algo := NewFixedWindowAlgorithm(clock, "ip")
	ctx := context.Background()

	denied := 0
	for i := 1; i <= 21; i++ {
		d, err := algo.IsAllowed(ctx, "ratelimit:10.0.0.1", store, 20, time.Minute)
		require.NoError(t, err)
		if !d.Allowed {
			denied++
			assert.Equal(t, 21, i, "only the 21st request may be denied")
			assert.Equal(t, time.Minute, d.RetryAfter)
			assert.Equal(t, int64(60), d.RetryAfterSeconds())
			assert.Equal(t, 0, d.Remaining)
		}
	}
	assert.Equal(t, 1, denied)
}

func TestFixedWindow_TwentyRequestsNeverDenied(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryCounterStore(clock)
	algo := NewFixedWindowAlgorithm(clock, "ip")

	for i := 1; i <= 20; i++ {
		d, err := algo.IsAllowed(context.Background(), "k", store, 20, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 20-i, d.Remaining)
		assert.Zero(t, d.RetryAfter)
	}
}

func TestFixedWindow_ResetsAfterWindow(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryCounterStore(clock)
	algo := NewFixedWindowAlgorithm(clock, "ip")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = algo.IsAllowed(ctx, "k", store, 2, time.Minute)
	}
	clock.Advance(time.Minute)

	d, err := algo.IsAllowed(ctx, "k", store, 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(1), d.Count)
}

func TestFixedWindow_KeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryCounterStore(clock)
	algo := NewFixedWindowAlgorithm(clock, "ip")
	ctx := context.Background()

	_, _ = algo.IsAllowed(ctx, "a", store, 1, time.Minute)
	da, _ := algo.IsAllowed(ctx, "a", store, 1, time.Minute)
	db, _ := algo.IsAllowed(ctx, "b", store, 1, time.Minute)

	assert.False(t, da.Allowed)
	assert.True(t, db.Allowed)
}

func TestFixedWindow_StoreErrorIsReturned(t *testing.T) {
	storeErr := errors.New("redis down")
	algo := NewFixedWindowAlgorithm(nil, "ip")

	d, err := algo.IsAllowed(context.Background(), "k", failingStore{err: storeErr}, 20, time.Minute)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, storeErr)
}

func TestFixedWindow_ResetAtIsWindowEnd(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryCounterStore(clock)
	algo := NewFixedWindowAlgorithm(clock, "ip")
	ctx := context.Background()
	windowEnd := clock.Now().Add(time.Minute)

	d, err := algo.IsAllowed(ctx, "k", store, 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, windowEnd, d.ResetAt)
	assert.Equal(t, "ip", d.LimiterType)

	clock.Advance(30 * time.Second)
	d, err = algo.IsAllowed(ctx, "k", store, 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.Count)
	assert.Equal(t, windowEnd, d.ResetAt, "later requests keep the first request's window end")

	clock.Advance(30 * time.Second)
	d, err = algo.IsAllowed(ctx, "k", store, 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Count)
	assert.Equal(t, windowEnd.Add(time.Minute), d.ResetAt)
}

// A store that reports no TTL falls back to a full window.
func TestFixedWindow_ResetAtWithoutTTL(t *testing.T) {
	clock := newFakeClock()
	algo := NewFixedWindowAlgorithm(clock, "ip")

	d, err := algo.IsAllowed(context.Background(), "k", fixedStore{count: 3}, 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Minute), d.ResetAt)
}

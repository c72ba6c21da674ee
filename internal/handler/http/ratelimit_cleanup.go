package http

import (
	"context"
	"log/slog"
	"time"
)

// CounterCleaner is a rate-limit counter store that must be swept by the
// process. ratelimit.MemoryCounterStore satisfies it; the Redis store
// expires keys on its own and needs no sweeper.
type CounterCleaner interface {
	Cleanup() int
	KeyCount() int
}

// DefaultCleanupInterval is how often expired counters are swept.
const DefaultCleanupInterval = time.Minute

// StartRateLimitCleanup sweeps expired counters from store every interval
// until ctx is canceled. It blocks, so callers run it in a goroutine.
func StartRateLimitCleanup(ctx context.Context, store CounterCleaner, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("rate limit cleanup started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("rate limit cleanup stopped")
			return
		case <-ticker.C:
			removed := store.Cleanup()
			logger.Debug("rate limit cleanup completed",
				slog.Int("keys_removed", removed),
				slog.Int("active_keys", store.KeyCount()))
		}
	}
}

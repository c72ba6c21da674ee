// Package cache adapts Redis into an advisory key-value store.
//
// Every operation runs under a short timeout and behind a circuit breaker.
// Backend failures are logged and absorbed: reads report a miss, writes and
// deletes are dropped. Only IncrementAndExpire returns an error, so the rate
// limiter can decide to fail open.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"article-service/internal/observability/metrics"
	"article-service/internal/resilience/circuitbreaker"
)

// DefaultTimeout bounds every Redis roundtrip.
const DefaultTimeout = 100 * time.Millisecond

// incrementScript increments KEYS[1], starts its expiry when the key has
// none, and returns {count, remaining ms}. ARGV[1] is the window in ms.
var incrementScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// Config controls the Redis store.
type Config struct {
	// Timeout bounds each call; exceeding it counts as a backend failure.
	Timeout time.Duration
	// Breaker configures the circuit breaker shared by all calls.
	Breaker circuitbreaker.Config
}

// DefaultConfig returns the store defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: DefaultTimeout,
		Breaker: circuitbreaker.CacheConfig(),
	}
}

// RedisStore is safe for concurrent use.
type RedisStore struct {
	client  redis.UniversalClient
	timeout time.Duration
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewClient builds a go-redis client from a redis:// URL.
// Context deadlines are honored so the per-call timeout applies to the socket.
func NewClient(rawURL string, timeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.ContextTimeoutEnabled = true
	if timeout > 0 {
		opts.DialTimeout = 5 * timeout
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
	}
	return redis.NewClient(opts), nil
}

// NewRedisStore wraps client. A nil logger uses slog.Default.
func NewRedisStore(client redis.UniversalClient, cfg Config, logger *slog.Logger) *RedisStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = circuitbreaker.CacheConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		client:  client,
		timeout: cfg.Timeout,
		breaker: circuitbreaker.New(cfg.Breaker),
		logger:  logger,
	}
}

// Get returns the value stored under key. ok is false on a miss or on any failure.
func (s *RedisStore) Get(ctx context.Context, key string) (value []byte, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	defer observe("get", time.Now())

	var found bool
	b, err := circuitbreaker.Do(s.breaker, func() ([]byte, error) {
		v, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		found = err == nil
		return v, err
	})
	if err != nil {
		s.absorb("get", key, err)
		return nil, false
	}
	return b, found
}

// Set stores value under key with ttl. Failures are logged and dropped.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	defer observe("set", time.Now())

	_, err := circuitbreaker.Do(s.breaker, func() (string, error) {
		return s.client.Set(ctx, key, value, ttl).Result()
	})
	if err != nil {
		s.absorb("set", key, err)
	}
}

// Delete removes key. Failures are logged and dropped.
func (s *RedisStore) Delete(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	defer observe("delete", time.Now())

	_, err := circuitbreaker.Do(s.breaker, func() (int64, error) {
		return s.client.Del(ctx, key).Result()
	})
	if err != nil {
		s.absorb("delete", key, err)
	}
}

// IncrementAndExpire atomically increments the counter under key and, when the
// key is new, starts its expiry of window. It returns the resulting count and
// the time left in the window.
func (s *RedisStore) IncrementAndExpire(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	defer observe("incr", time.Now())

	res, err := circuitbreaker.Do(s.breaker, func() ([]int64, error) {
		return incrementScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64Slice()
	})
	if err == nil && len(res) != 2 {
		err = fmt.Errorf("unexpected script reply %v", res)
	}
	if err != nil {
		s.absorb("incr", key, err)
		return 0, 0, fmt.Errorf("increment %s: %w", key, err)
	}
	return res[0], time.Duration(res[1]) * time.Millisecond, nil
}

// Ping reports whether Redis answers. It bypasses the circuit breaker so health
// checks see the backend itself.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) absorb(op, key string, err error) {
	metrics.RecordCacheError(op)
	s.logger.Warn("cache backend unavailable",
		slog.String("operation", op),
		slog.String("key", key),
		slog.String("circuit_state", s.breaker.State().String()),
		slog.Any("error", err))
}

func observe(op string, start time.Time) {
	metrics.RecordCacheDuration(op, time.Since(start))
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article-service/internal/handler/http/auth"
	"article-service/internal/infra/cache"
	"article-service/pkg/ratelimit"
)

type failingCounterStore struct{}

func (failingCounterStore) IncrementAndExpire(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

type recordingMetrics struct {
	mu       sync.Mutex
	allowed  int
	denied   int
	failOpen int
}

func (m *recordingMetrics) RecordAllowed(string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowed++
}

func (m *recordingMetrics) RecordDenied(string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied++
}

func (m *recordingMetrics) RecordFailOpen(string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOpen++
}

func (m *recordingMetrics) RecordCheckDuration(string, time.Duration) {}

type stubExtractor func(r *http.Request) (string, error)

func (f stubExtractor) ExtractIP(r *http.Request) (string, error) { return f(r) }

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func newTestLimiter(store ratelimit.CounterStore, metrics ratelimit.RateLimitMetrics, skip func(string) bool) http.Handler {
	cfg := ratelimit.DefaultConfig()
	limiter := NewIPRateLimiter(cfg, &RemoteAddrExtractor{}, store,
		ratelimit.NewFixedWindowAlgorithm(nil, LimiterTypeIP), metrics, nil, skip)
	return limiter.Middleware()(okHandler)
}

func doRequest(h http.Handler, remoteAddr, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPRateLimiter_AdmitsUpToLimitThenDenies(t *testing.T) {
	metrics := &recordingMetrics{}
	h := newTestLimiter(ratelimit.NewMemoryCounterStore(nil), metrics, nil)

	for i := 1; i <= 20; i++ {
		rec := doRequest(h, "192.0.2.1:5000", "/articles")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Equal(t, "20", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, fmt.Sprint(20-i), rec.Header().Get("X-RateLimit-Remaining"))
	}

	rec := doRequest(h, "192.0.2.1:5000", "/articles")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body RateLimitExceededBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, RateLimitExceededBody{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests. Retry after 60 seconds.",
		RetryAfter: 60,
	}, body)

	assert.Equal(t, 20, metrics.allowed)
	assert.Equal(t, 1, metrics.denied)
}

func TestIPRateLimiter_ClientsAreIndependent(t *testing.T) {
	h := newTestLimiter(ratelimit.NewMemoryCounterStore(nil), nil, nil)

	for i := 0; i < 21; i++ {
		doRequest(h, "192.0.2.1:5000", "/articles")
	}

	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "192.0.2.1:5001", "/articles").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "192.0.2.2:5000", "/articles").Code)
}

func TestIPRateLimiter_FailsOpenWhenStoreDown(t *testing.T) {
	metrics := &recordingMetrics{}
	h := newTestLimiter(failingCounterStore{}, metrics, nil)

	for i := 1; i <= 21; i++ {
		rec := doRequest(h, "192.0.2.1:5000", "/articles")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
	assert.Equal(t, 21, metrics.failOpen)
	assert.Zero(t, metrics.denied)
}

func TestIPRateLimiter_FailsOpenWhenClientUnknown(t *testing.T) {
	metrics := &recordingMetrics{}
	limiter := NewIPRateLimiter(ratelimit.DefaultConfig(),
		stubExtractor(func(*http.Request) (string, error) { return "", errors.New("no address") }),
		ratelimit.NewMemoryCounterStore(nil),
		ratelimit.NewFixedWindowAlgorithm(nil, LimiterTypeIP), metrics, nil, nil)

	rec := doRequest(limiter.Middleware()(okHandler), "", "/articles")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, metrics.failOpen)
}

func TestIPRateLimiter_SkipsPublicEndpoints(t *testing.T) {
	store := ratelimit.NewMemoryCounterStore(nil)
	h := newTestLimiter(store, nil, auth.IsPublicEndpoint)

	for _, path := range []string{"/health", "/health/", "/metrics", "/ready/", "/live"} {
		for i := 0; i < 25; i++ {
			require.Equal(t, http.StatusOK, doRequest(h, "192.0.2.1:5000", path).Code, path)
		}
	}
	assert.Zero(t, store.KeyCount())

	doRequest(h, "192.0.2.1:5000", "/health/detail")
	assert.Equal(t, 1, store.KeyCount(), "paths the key gate protects are counted")
}

func TestIPRateLimiter_Disabled(t *testing.T) {
	cfg := ratelimit.DefaultConfig()
	cfg.Enabled = false
	store := ratelimit.NewMemoryCounterStore(nil)
	h := NewIPRateLimiter(cfg, nil, store, ratelimit.NewFixedWindowAlgorithm(nil, LimiterTypeIP), nil, nil, nil).
		Middleware()(okHandler)

	for i := 0; i < 25; i++ {
		require.Equal(t, http.StatusOK, doRequest(h, "192.0.2.1:5000", "/articles").Code)
	}
	assert.Zero(t, store.KeyCount())
}

func TestIPRateLimiter_UsesKeyPrefix(t *testing.T) {
	var gotKey string
	store := keyRecordingStore{key: &gotKey}
	h := newTestLimiter(store, nil, nil)

	doRequest(h, "192.0.2.1:5000", "/articles/1")

	assert.Equal(t, "ratelimit:192.0.2.1", gotKey)
}

type keyRecordingStore struct{ key *string }

func (s keyRecordingStore) IncrementAndExpire(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	*s.key = key
	return 1, window, nil
}

func TestIPRateLimiter_ConcurrentRequestsCountedExactly(t *testing.T) {
	metrics := &recordingMetrics{}
	h := newTestLimiter(ratelimit.NewMemoryCounterStore(nil), metrics, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doRequest(h, "192.0.2.1:5000", "/articles")
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, metrics.allowed)
	assert.Equal(t, 30, metrics.denied)
}

func newRedisLimiter(t *testing.T, metrics ratelimit.RateLimitMetrics) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := cache.NewClient("redis://"+mr.Addr()+"/0", 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := cache.NewRedisStore(client, cache.DefaultConfig(), logger)
	return newTestLimiter(store, metrics, nil), mr
}

func TestIPRateLimiter_RedisStore_ResetIsWindowEnd(t *testing.T) {
	h, mr := newRedisLimiter(t, nil)

	first := doRequest(h, "192.0.2.1:5000", "/articles")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "19", first.Header().Get("X-RateLimit-Remaining"))

	mr.FastForward(40 * time.Second)
	second := doRequest(h, "192.0.2.1:5000", "/articles")
	require.Equal(t, http.StatusOK, second.Code)

	reset, err := strconv.ParseInt(second.Header().Get("X-RateLimit-Reset"), 10, 64)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(20*time.Second).Unix(), reset, 1)
}

func TestIPRateLimiter_RedisStore_FailsOpenWhenRedisDown(t *testing.T) {
	metrics := &recordingMetrics{}
	h, mr := newRedisLimiter(t, metrics)

	require.Equal(t, http.StatusOK, doRequest(h, "192.0.2.1:5000", "/articles").Code)
	mr.Close()

	for i := 1; i <= 25; i++ {
		rec := doRequest(h, "192.0.2.1:5000", "/articles")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Remaining"))
	}
	assert.Equal(t, 1, metrics.allowed)
	assert.Equal(t, 25, metrics.failOpen)
	assert.Zero(t, metrics.denied)
}

package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	down := errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

	tests := []struct {
		name     string
		db       Pinger
		cache    Pinger
		expected HealthResponse
	}{
		{
			name:     "all dependencies up",
			db:       &fakePinger{},
			cache:    &fakePinger{},
			expected: HealthResponse{Status: StatusOK, Database: StatusOK, Redis: StatusOK},
		},
		{
			name:     "redis down",
			db:       &fakePinger{},
			cache:    &fakePinger{err: down},
			expected: HealthResponse{Status: StatusDegraded, Database: StatusOK, Redis: StatusUnavailable},
		},
		{
			name:     "database down",
			db:       &fakePinger{err: sql.ErrConnDone},
			cache:    &fakePinger{},
			expected: HealthResponse{Status: StatusDegraded, Database: StatusUnavailable, Redis: StatusOK},
		},
		{
			name:     "nothing configured",
			expected: HealthResponse{Status: StatusDegraded, Database: StatusUnavailable, Redis: StatusUnavailable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandler{DB: tt.db, Cache: tt.cache}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.expected, decodeHealth(t, rec))
		})
	}
}

func TestHealthHandler_SlowDependencyTimesOut(t *testing.T) {
	h := &HealthHandler{
		DB:      &fakePinger{},
		Cache:   &fakePinger{delay: time.Second},
		Timeout: 20 * time.Millisecond,
	}

	start := time.Now()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUnavailable, decodeHealth(t, rec).Redis)
}

func TestHealthHandler_WithSQLDB(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPing().WillReturnError(sql.ErrConnDone)

	h := &HealthHandler{DB: PingFunc(db.PingContext), Cache: &fakePinger{}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	resp := decodeHealth(t, rec)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, StatusUnavailable, resp.Database)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadyHandler(t *testing.T) {
	t.Run("database up", func(t *testing.T) {
		h := &ReadyHandler{DB: &fakePinger{}}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		h := &ReadyHandler{DB: &fakePinger{err: sql.ErrConnDone}}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"not ready"}`, rec.Body.String())
	})
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	(&LiveHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}

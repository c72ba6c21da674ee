// Package http provides the process-level HTTP handlers and middleware:
// health probes, request logging, panic recovery, body limits, timeouts and
// Prometheus request metrics. Article routes live in the article subpackage.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"article-service/internal/handler/http/respond"
	"article-service/internal/observability/logging"
)

// Health check values reported per dependency and overall.
const (
	StatusOK          = "ok"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

// DefaultProbeTimeout bounds each dependency check.
const DefaultProbeTimeout = 2 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function such as (*sql.DB).PingContext to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// HealthHandler reports the state of the database and the cache.
// It always answers 200: a degraded dependency is reported, never escalated,
// because the service keeps serving reads without the cache.
type HealthHandler struct {
	DB      Pinger
	Cache   Pinger
	Timeout time.Duration
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	resp := HealthResponse{Status: StatusOK}

	// Each probe writes only its own field, so the group needs no lock.
	var g errgroup.Group
	g.Go(func() error {
		resp.Database = probe(ctx, "database", h.DB)
		return nil
	})
	g.Go(func() error {
		resp.Redis = probe(ctx, "redis", h.Cache)
		return nil
	})
	_ = g.Wait()

	if resp.Database != StatusOK || resp.Redis != StatusOK {
		resp.Status = StatusDegraded
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, http.StatusOK, resp)
}

func probe(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return StatusUnavailable
	}
	if err := p.Ping(ctx); err != nil {
		logging.FromContext(ctx).Warn("health check failed",
			slog.String("dependency", name),
			slog.String("error", respond.SanitizeError(err)))
		return StatusUnavailable
	}
	return StatusOK
}

// ReadyHandler answers readiness probes: 200 when the database responds,
// 503 otherwise. The cache is not required to serve traffic.
type ReadyHandler struct {
	DB      Pinger
	Timeout time.Duration
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	if probe(ctx, "database", h.DB) != StatusOK {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// LiveHandler answers liveness probes. It touches no dependency.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

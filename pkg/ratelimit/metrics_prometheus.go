package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements RateLimitMetrics with Prometheus collectors.
type PrometheusMetrics struct {
	requestsTotal *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_rate_limit_requests_total",
				Help: "Total rate limit checks by limiter type, status, and path",
			},
			[]string{"limiter_type", "status", "path"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_rate_limit_check_duration_seconds",
				Help:    "Duration of rate limit check operations",
				Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"limiter_type"},
		),
	}
	reg.MustRegister(m.requestsTotal, m.checkDuration)
	return m
}

func (m *PrometheusMetrics) RecordAllowed(limiterType, endpoint string) {
	m.requestsTotal.WithLabelValues(limiterType, "allowed", endpoint).Inc()
}

func (m *PrometheusMetrics) RecordDenied(limiterType, endpoint string) {
	m.requestsTotal.WithLabelValues(limiterType, "denied", endpoint).Inc()
}

func (m *PrometheusMetrics) RecordFailOpen(limiterType, endpoint string) {
	m.requestsTotal.WithLabelValues(limiterType, "fail_open", endpoint).Inc()
}

func (m *PrometheusMetrics) RecordCheckDuration(limiterType string, duration time.Duration) {
	m.checkDuration.WithLabelValues(limiterType).Observe(duration.Seconds())
}

package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"article-service/internal/handler/http/pathutil"
	"article-service/internal/handler/http/responsewriter"
)

// serverMetrics are the RED metrics for every route. Labels use the
// normalized path, so /articles/42 is counted as /articles/:id.
var serverMetrics = struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge
	bodyIn   *prometheus.HistogramVec
	bodyOut  *prometheus.HistogramVec
}{
	requests: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, path and status",
	}, []string{"method", "path", "status"}),

	// From a cache hit (~1ms) to a slow Postgres round trip.
	latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"}),

	inFlight: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "HTTP requests currently being served",
	}),

	bodyIn: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_size_bytes",
		Help:    "Declared HTTP request body size",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"method", "path"}),

	bodyOut: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "HTTP response body size",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"method", "path"}),
}

// MetricsMiddleware records count, latency and body sizes per route.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := &serverMetrics
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		route := pathutil.NormalizePath(r.URL.Path)
		if r.ContentLength > 0 {
			m.bodyIn.WithLabelValues(r.Method, route).Observe(float64(r.ContentLength))
		}

		start := time.Now()
		rw := responsewriter.Wrap(w)
		next.ServeHTTP(rw, r)

		status := strconv.Itoa(rw.StatusCode())
		m.requests.WithLabelValues(r.Method, route, status).Inc()
		m.latency.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.bodyOut.WithLabelValues(r.Method, route).Observe(float64(rw.BytesWritten()))
	})
}

// MetricsHandler exposes the default registry for scraping.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

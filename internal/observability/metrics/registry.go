package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache metrics
var (
	// CacheLookupsTotal counts article cache reads by result (hit, miss)
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_cache_lookups_total",
			Help: "Total number of article cache lookups by result",
		},
		[]string{"result"},
	)

	// CacheErrorsTotal counts cache backend failures that were absorbed
	CacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_backend_errors_total",
			Help: "Total number of cache backend failures by operation",
		},
		[]string{"operation"},
	)

	// CacheOperationDuration measures cache roundtrips including failures
	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Cache operation duration in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
		[]string{"operation"},
	)
)

// Resilience metrics
var (
	// CircuitBreakerState is 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"circuit"},
	)
)

// Article use case metrics
var (
	// ArticleMutationsTotal counts create/update/delete outcomes
	ArticleMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_mutations_total",
			Help: "Total number of article mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

// RecordCacheLookup records a cache read as a hit or a miss.
// Failed reads count as misses, the same way callers treat them.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordCacheError records an absorbed cache backend failure.
func RecordCacheError(operation string) {
	CacheErrorsTotal.WithLabelValues(operation).Inc()
}

// RecordCacheDuration records how long a cache operation took.
func RecordCacheDuration(operation string, d time.Duration) {
	CacheOperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordArticleMutation records the outcome of a create, update or delete.
// Outcome is one of success, not_found, conflict, invalid, error.
func RecordArticleMutation(operation, outcome string) {
	ArticleMutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordCircuitState sets the gauge for a breaker. The value follows
// gobreaker.State ordering.
func RecordCircuitState(circuit string, state int) {
	CircuitBreakerState.WithLabelValues(circuit).Set(float64(state))
}

package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrorsTotal counts rejected pagination parameters.
	// Labels: param (skip, limit)
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_pagination_errors_total",
			Help: "Total number of rejected pagination parameters",
		},
		[]string{"param"},
	)

	// ReturnedItems tracks how many rows a list call returned.
	ReturnedItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "article_pagination_returned_items",
			Help:    "Number of items returned per list request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)
)

// RecordError records a rejected parameter.
func RecordError(param string) {
	ErrorsTotal.WithLabelValues(param).Inc()
}

// RecordReturned records the size of a returned page.
func RecordReturned(n int) {
	ReturnedItems.Observe(float64(n))
}

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// apiKeyChecksTotal counts API key checks by result.
var apiKeyChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_key_checks_total",
		Help: "API key checks by result",
	},
	[]string{"result"}, // result: success | missing | invalid
)

func recordAPIKeyCheck(result string) {
	apiKeyChecksTotal.WithLabelValues(result).Inc()
}

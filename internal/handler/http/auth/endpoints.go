package auth

import "strings"

// PublicEndpoints are served without an API key. Probes and the Prometheus
// scraper cannot be expected to carry the shared secret.
var PublicEndpoints = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
}

// IsPublicEndpoint reports whether path needs no API key.
//
// Only exact matches and a single trailing slash count:
//
//	IsPublicEndpoint("/health")        // true
//	IsPublicEndpoint("/health/")       // true
//	IsPublicEndpoint("/health/detail") // false
//	IsPublicEndpoint("/healthcheck")   // false
//	IsPublicEndpoint("/articles")      // false
func IsPublicEndpoint(path string) bool {
	path = strings.TrimSuffix(path, "/")
	for _, endpoint := range PublicEndpoints {
		if path == endpoint {
			return true
		}
	}
	return false
}

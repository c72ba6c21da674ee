// Package metrics provides Prometheus collectors for the cache layer and the
// article use cases. HTTP request metrics live with the HTTP middleware.
//
// All collectors register with the Prometheus default registry and are exposed
// through the /metrics endpoint.
//
//	metrics.RecordCacheLookup(hit)
//	metrics.RecordCacheError("set")
//	metrics.RecordArticleMutation("create", "success")
package metrics

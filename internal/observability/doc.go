// Package observability groups the logging, metrics and tracing infrastructure.
//
// Subpackages:
//   - logging: structured slog logger with request-scoped context propagation
//   - metrics: Prometheus collectors for the cache and article use cases
//   - tracing: OpenTelemetry HTTP middleware and tracer provider setup
package observability

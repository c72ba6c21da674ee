// Package tracing wires OpenTelemetry into the HTTP server.
//
// Setup installs an SDK tracer provider and the W3C trace-context
// propagator. Middleware starts one server span per request, continues any
// incoming traceparent, and echoes the trace ID in X-Trace-Id. When Setup
// is not called the global no-op provider is used and spans cost nothing.
//
//	shutdown, err := tracing.Setup(cfg.OTelEnabled, "article-service")
//	defer shutdown(ctx)
//	handler = tracing.Middleware(handler)
package tracing

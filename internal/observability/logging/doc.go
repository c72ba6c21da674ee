// Package logging provides structured logging utilities with context propagation.
//
// Loggers are log/slog JSON loggers. The HTTP middleware stores a request-scoped
// logger (carrying request_id and trace_id) in the context, and lower layers pick
// it up with FromContext so their warnings can be correlated with the request.
//
//	logger := logging.NewLogger(os.Stdout, "info")
//	ctx = logging.WithLogger(ctx, logging.WithRequestID(ctx, logger))
//	logging.FromContext(ctx).Warn("cache backend unavailable")
package logging

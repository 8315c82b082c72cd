// Package logging wraps log/slog with the service's logger construction and
// request-scoped attributes.
//
// Example usage:
//
//	logger := logging.NewLogger(logging.Config{Level: "debug", Format: "json"})
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.WithRequestID(ctx, slog.Default()).Info("serving request")
//	}
package logging

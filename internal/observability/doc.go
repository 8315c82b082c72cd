// Package observability groups the service's logging, metrics and tracing.
//
// Subpackages:
//   - logging: slog loggers and context helpers
//   - metrics: explicit Prometheus registry, histograms, gauges and timers
//   - tracing: OpenTelemetry tracer provider and HTTP server spans
//
// Example usage:
//
//	import (
//	    "app-metrics/internal/observability/logging"
//	    "app-metrics/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger(logging.Config{Level: "info"})
//
//	    reg := metrics.NewRegistry()
//	    httpMetrics, err := metrics.NewHTTPMetrics(reg)
//	    if err != nil {
//	        logger.Error("register metrics", slog.Any("error", err))
//	        os.Exit(1)
//	    }
//	    _ = httpMetrics
//	}
package observability

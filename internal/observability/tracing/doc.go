// Package tracing provides OpenTelemetry server spans for the HTTP API.
//
// Spans are named after the matched route ("GET /healthz") rather than the
// raw path. The trace ID is returned in the X-Trace-Id header and written to
// request logs for correlation.
//
// Example usage:
//
//	tp, err := tracing.NewTracerProvider("app-metrics", "1.0.0")
//	if err != nil {
//	    return err
//	}
//	defer tp.Shutdown(ctx)
//
//	handler := tracing.Middleware(tp)(mux)
package tracing

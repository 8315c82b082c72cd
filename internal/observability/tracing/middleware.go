package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"app-metrics/internal/handler/http/pathutil"
	"app-metrics/internal/handler/http/responsewriter"
)

// TraceIDHeader carries the trace ID back to the client.
const TraceIDHeader = "X-Trace-Id"

// Middleware starts a server span per request using tp.
//
// The middleware:
//   - extracts W3C trace context from the request headers
//   - sets X-Trace-Id on the response
//   - names the span "METHOD route" once the mux has matched a pattern
//   - records method, route, path and status code, and marks 5xx spans as errors
func Middleware(tp trace.TracerProvider) func(http.Handler) http.Handler {
	tracer := tp.Tracer(InstrumentationName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, route := pathutil.Ensure(ctx)

			ctx, span := tracer.Start(ctx, r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.URLPath(r.URL.Path),
				),
			)
			w.Header().Set(TraceIDHeader, span.SpanContext().TraceID().String())

			rw := responsewriter.Wrap(w)
			defer func() {
				label := route.Label(r.URL.Path)
				span.SetName(r.Method + " " + label)
				span.SetAttributes(
					semconv.HTTPRoute(label),
					semconv.HTTPResponseStatusCode(rw.StatusCode()),
				)
				if rw.StatusCode() >= http.StatusInternalServerError {
					span.SetStatus(codes.Error, http.StatusText(rw.StatusCode()))
				}
				span.End()
			}()

			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}

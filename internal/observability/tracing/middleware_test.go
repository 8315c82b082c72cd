package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"app-metrics/internal/handler/http/pathutil"
)

func newTestProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp, err := NewTracerProvider("app-metrics-test", "0.0.1", sdktrace.WithSyncer(exporter))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, exporter
}

func testMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /error", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return pathutil.Capture(mux)
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestMiddleware_NamesSpanByRoute(t *testing.T) {
	tp, exporter := newTestProvider(t)
	handler := Middleware(tp)(testMux())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, "GET /users/{id}", span.Name)

	route, ok := attrValue(span.Attributes, semconv.HTTPRouteKey)
	require.True(t, ok)
	assert.Equal(t, "/users/{id}", route.AsString())

	path, ok := attrValue(span.Attributes, semconv.URLPathKey)
	require.True(t, ok)
	assert.Equal(t, "/users/42", path.AsString())

	status, ok := attrValue(span.Attributes, semconv.HTTPResponseStatusCodeKey)
	require.True(t, ok)
	assert.Equal(t, int64(200), status.AsInt64())
	assert.Equal(t, codes.Unset, span.Status.Code)
}

func TestMiddleware_UnmatchedRouteUsesRawPath(t *testing.T) {
	tp, exporter := newTestProvider(t)
	handler := Middleware(tp)(testMux())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /missing", spans[0].Name)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiddleware_AddsTraceIDToResponse(t *testing.T) {
	tp, exporter := newTestProvider(t)
	handler := Middleware(tp)(testMux())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1", nil))

	traceID := rec.Header().Get(TraceIDHeader)
	assert.Len(t, traceID, 32)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, spans[0].SpanContext.TraceID().String(), traceID)
}

func TestMiddleware_PropagatesTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator()) })

	tp, exporter := newTestProvider(t)
	handler := Middleware(tp)(testMux())

	req := httptest.NewRequest(http.MethodGet, "/users/7", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent.SpanID().String())
}

func TestMiddleware_StatusByCode(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus codes.Code
	}{
		{name: "5xx marks error", target: "/error", wantStatus: codes.Error},
		{name: "4xx stays unset", target: "/missing", wantStatus: codes.Unset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, exporter := newTestProvider(t)
			handler := Middleware(tp)(testMux())

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.target, nil))

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantStatus, spans[0].Status.Code)
		})
	}
}

func TestNewTracerProvider_Resource(t *testing.T) {
	tp, exporter := newTestProvider(t)
	handler := Middleware(tp)(testMux())
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/1", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	attrs := spans[0].Resource.Attributes()
	name, ok := attrValue(attrs, semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "app-metrics-test", name.AsString())

	version, ok := attrValue(attrs, semconv.ServiceVersionKey)
	require.True(t, ok)
	assert.Equal(t, "0.0.1", version.AsString())
}

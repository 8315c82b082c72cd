package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InstrumentationName identifies spans created by this service's middleware.
const InstrumentationName = "app-metrics/internal/observability/tracing"

// NewTracerProvider returns an SDK tracer provider whose resource carries the
// service name and version. Extra options (exporters, samplers) are appended.
// The caller owns Shutdown.
func NewTracerProvider(serviceName, serviceVersion string, opts ...sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	res, err := newResource(serviceName, serviceVersion)
	if err != nil {
		return nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	all := append([]sdktrace.TracerProviderOption{sdktrace.WithResource(res)}, opts...)
	return sdktrace.NewTracerProvider(all...), nil
}

func newResource(serviceName, serviceVersion string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
}

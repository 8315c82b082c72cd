package http

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"app-metrics/internal/handler/http/pathutil"
	"app-metrics/internal/handler/http/requestid"
	"app-metrics/internal/observability/metrics"
	"app-metrics/internal/observability/tracing"
)

// RouterDeps are the collaborators of the API router.
type RouterDeps struct {
	Logger      *slog.Logger
	Registry    *metrics.Registry
	HTTPMetrics *metrics.HTTPMetrics

	// TracerProvider enables server spans when non-nil.
	TracerProvider trace.TracerProvider

	Version        string
	FaultInjection bool
}

// NewRouter builds the API handler. Middleware order, outermost first:
// request ID, tracing, timing, logging, recovery, route capture.
// Timing sits outside recovery so a panic is observed as the 500 written by Recover.
func NewRouter(deps RouterDeps) (http.Handler, error) {
	if deps.Registry == nil || deps.HTTPMetrics == nil {
		return nil, errors.New("router: registry and http metrics are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", HealthHandler())
	mux.Handle("GET /api/version", VersionHandler(deps.Version))
	mux.Handle("GET /api/fault", FaultHandler(deps.FaultInjection))
	mux.Handle("GET /metrics", MetricsHandler(deps.Registry, logger))

	mws := []Middleware{requestid.Middleware}
	if deps.TracerProvider != nil {
		mws = append(mws, tracing.Middleware(deps.TracerProvider))
	}
	mws = append(mws,
		MetricsMiddleware(deps.HTTPMetrics, logger),
		Logging(logger),
		Recover(logger),
	)

	return Chain(pathutil.Capture(mux), mws...), nil
}

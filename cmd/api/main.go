package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"

	"app-metrics/internal/config"
	hhttp "app-metrics/internal/handler/http"
	"app-metrics/internal/observability/logging"
	"app-metrics/internal/observability/metrics"
	"app-metrics/internal/observability/tracing"
)

func main() {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

// app is the wired HTTP handler plus whatever must be released on exit.
type app struct {
	handler  http.Handler
	registry *metrics.Registry
	shutdown func(context.Context) error
}

// newApp builds the registry, the HTTP instruments, the optional tracer
// provider and the router.
func newApp(cfg *config.AppConfig, logger *slog.Logger) (*app, error) {
	reg := metrics.NewRegistry()
	if cfg.Metrics.DefaultCollectors {
		if err := reg.CollectDefault(); err != nil {
			return nil, fmt.Errorf("register default collectors: %w", err)
		}
	}

	httpMetrics, err := metrics.NewHTTPMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	a := &app{
		registry: reg,
		shutdown: func(context.Context) error { return nil },
	}

	deps := hhttp.RouterDeps{
		Logger:         logger,
		Registry:       reg,
		HTTPMetrics:    httpMetrics,
		Version:        cfg.Version,
		FaultInjection: cfg.FaultInjection,
	}

	if cfg.TracingEnabled {
		tp, err := tracing.NewTracerProvider(cfg.ServiceName, cfg.Version)
		if err != nil {
			return nil, err
		}
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		deps.TracerProvider = tp
		a.shutdown = tp.Shutdown
	}

	a.handler, err = hhttp.NewRouter(deps)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// run wires the application and serves it until ctx is done.
// Under APP_ENV=test it wires everything but never opens a listener.
func run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer provider shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("application configured",
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
		slog.Bool("fault_injection", cfg.FaultInjection),
		slog.Bool("tracing", cfg.TracingEnabled),
		slog.Any("metrics", a.registry.Names()))

	if cfg.IsTest() {
		logger.Info("listener disabled in test environment")
		return nil
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}
	return serve(ctx, ln, a.handler, cfg, logger)
}

// serve runs an http.Server on ln and shuts it down gracefully when ctx is done.
func serve(ctx context.Context, ln net.Listener, h http.Handler, cfg *config.AppConfig, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", ln.Addr().String()),
			slog.String("version", cfg.Version))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

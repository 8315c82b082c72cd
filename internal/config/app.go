// Package config loads the API server configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "app-metrics/pkg/config"
)

// EnvTest is the APP_ENV value that suppresses the network listener.
const EnvTest = "test"

// AppConfig holds the settings of the API process.
type AppConfig struct {
	// Port is the TCP listen port. Env: PORT. Default: 3000
	Port int

	// Version is reported by /api/version. Env: APP_VERSION. Default: "1.0.0"
	Version string

	// FaultInjection makes /api/fault return 500. Env: FAULT (enabled only by "1").
	FaultInjection bool

	// Env is the runtime mode. Env: APP_ENV. Default: "production"
	Env string

	// ServiceName names the service in traces. Env: SERVICE_NAME. Default: "app-metrics"
	ServiceName string

	Log     LogConfig
	Server  ServerConfig
	Metrics MetricsConfig

	// TracingEnabled installs the OpenTelemetry SDK provider. Env: TRACING_ENABLED. Default: false
	TracingEnabled bool
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level: debug, info, warn or error. Env: LOG_LEVEL. Default: "info"
	Level string
	// Format: json or text. Env: LOG_FORMAT. Default: "json"
	Format string
}

// ServerConfig holds http.Server timeouts.
type ServerConfig struct {
	// ReadHeaderTimeout. Env: READ_HEADER_TIMEOUT. Default: 10s
	ReadHeaderTimeout time.Duration
	// ShutdownTimeout bounds graceful shutdown. Env: SHUTDOWN_TIMEOUT. Default: 5s
	ShutdownTimeout time.Duration
}

// MetricsConfig controls the default collectors.
type MetricsConfig struct {
	// DefaultCollectors registers Go runtime and process metrics.
	// Env: METRICS_DEFAULT_COLLECTORS. Default: true
	DefaultCollectors bool
}

// LoadAppConfig reads AppConfig from the environment and validates it.
func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:           pkgconfig.GetEnvInt("PORT", 3000),
		Version:        pkgconfig.GetEnvString("APP_VERSION", "1.0.0"),
		FaultInjection: pkgconfig.GetEnvFlag("FAULT"),
		Env:            strings.ToLower(pkgconfig.GetEnvString("APP_ENV", "production")),
		ServiceName:    pkgconfig.GetEnvString("SERVICE_NAME", "app-metrics"),
		Log: LogConfig{
			Level:  strings.ToLower(pkgconfig.GetEnvString("LOG_LEVEL", "info")),
			Format: strings.ToLower(pkgconfig.GetEnvString("LOG_FORMAT", "json")),
		},
		Server: ServerConfig{
			ReadHeaderTimeout: pkgconfig.GetEnvDuration("READ_HEADER_TIMEOUT", 10*time.Second),
			ShutdownTimeout:   pkgconfig.GetEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Metrics: MetricsConfig{
			DefaultCollectors: pkgconfig.GetEnvBool("METRICS_DEFAULT_COLLECTORS", true),
		},
		TracingEnabled: pkgconfig.GetEnvBool("TRACING_ENABLED", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration correctness.
func (c *AppConfig) Validate() error {
	if err := pkgconfig.ValidatePort(c.Port); err != nil {
		return fmt.Errorf("PORT: %w", err)
	}
	if strings.TrimSpace(c.Version) == "" {
		return fmt.Errorf("APP_VERSION cannot be blank")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("SERVICE_NAME cannot be empty")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Server.ReadHeaderTimeout); err != nil {
		return fmt.Errorf("READ_HEADER_TIMEOUT: %w", err)
	}
	if err := pkgconfig.ValidateDurationRange(c.Server.ShutdownTimeout, 100*time.Millisecond, 5*time.Minute); err != nil {
		return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}
	return nil
}

// IsTest reports whether the process runs under automated tests.
func (c *AppConfig) IsTest() bool {
	return c.Env == EnvTest
}

// Addr returns the listen address.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

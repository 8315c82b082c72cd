package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"app-metrics/internal/handler/http/pathutil"
	"app-metrics/internal/handler/http/respond"
	"app-metrics/internal/handler/http/responsewriter"
	"app-metrics/internal/observability/metrics"
)

// StatusClientClosedRequest labels requests whose client went away before any
// status was written. It is never sent on the wire.
const StatusClientClosedRequest = 499

// MetricsMiddleware records http_request_duration_seconds{method,route,code}
// and tracks http_requests_in_flight.
//
// The observation is made in a deferred function, so it happens exactly once
// per request whether the handler returns, panics or loses its client.
// The route label is the matched ServeMux pattern, or the raw path when
// nothing matched; pathutil.Capture must wrap the mux for patterns to be seen.
func MetricsMiddleware(m *metrics.HTTPMetrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timer := m.RequestDuration.StartTimer()
			m.InFlight.Inc()

			ctx, route := pathutil.Ensure(r.Context())
			r = r.WithContext(ctx)
			rw := responsewriter.Wrap(w)

			completed := false
			defer func() {
				m.InFlight.Dec()

				labels := metrics.Labels{
					metrics.LabelMethod: r.Method,
					metrics.LabelRoute:  route.Label(r.URL.Path),
					metrics.LabelCode:   strconv.Itoa(finalStatus(r.Context(), rw, completed)),
				}
				if _, err := timer.ObserveDuration(labels); err != nil {
					logger.Warn("failed to record request duration",
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.Any("error", err))
				}
			}()

			next.ServeHTTP(rw, r)
			completed = true
		})
	}
}

// finalStatus returns the status to record: the one written, else 500 for a
// panicking handler, 499 for a cancelled request, and 200 otherwise.
func finalStatus(ctx context.Context, rw *responsewriter.ResponseWriter, completed bool) int {
	switch {
	case rw.HeaderWritten():
		return rw.StatusCode()
	case !completed:
		return http.StatusInternalServerError
	case ctx.Err() != nil:
		return StatusClientClosedRequest
	default:
		return http.StatusOK
	}
}

// MetricsHandler serves the text exposition of reg.
//
// A collector failure still serves whatever was gathered; only a scrape that
// produced nothing at all fails with 500.
func MetricsHandler(reg *metrics.Registry, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := reg.Render(&buf); err != nil {
			if buf.Len() == 0 {
				logger.Error("failed to render metrics", slog.Any("error", err))
				respond.SafeError(w, http.StatusInternalServerError, err)
				return
			}
			logger.Warn("metrics rendered partially", slog.Any("error", err))
		}

		w.Header().Set("Content-Type", reg.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	})
}

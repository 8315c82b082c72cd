package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"app-metrics/internal/handler/http/pathutil"
	"app-metrics/internal/handler/http/respond"
	"app-metrics/internal/handler/http/responsewriter"
	"app-metrics/internal/observability/logging"
)

// Middleware decorates an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Logging returns middleware that logs one "request completed" line per request
// with the request ID, trace ID, route, status, size and duration.
// The line is written in a deferred call, so a request aborted with
// http.ErrAbortHandler is still logged, with the same status the timing
// middleware records. 5xx responses are logged at warn level.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx, route := pathutil.Ensure(r.Context())
			r = r.WithContext(ctx)
			wrapped := responsewriter.Wrap(w)

			completed := false
			defer func() {
				duration := time.Since(start)
				status := finalStatus(r.Context(), wrapped, completed)
				level := slog.LevelInfo
				if status >= http.StatusInternalServerError {
					level = slog.LevelWarn
				}

				logging.WithRequestID(r.Context(), logger).LogAttrs(r.Context(), level, "request completed",
					slog.String("trace_id", traceID(r)),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("route", route.Label(r.URL.Path)),
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("user_agent", r.Header.Get("User-Agent")),
					slog.Int("status", status),
					slog.Int("bytes", wrapped.BytesWritten()),
					slog.Duration("duration", duration),
					slog.String("duration_ms", fmt.Sprintf("%.2f", duration.Seconds()*1000)),
				)
			}()

			next.ServeHTTP(wrapped, r)
			completed = true
		})
	}
}

func traceID(r *http.Request) string {
	sc := trace.SpanFromContext(r.Context()).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Recover returns middleware that turns a handler panic into a 500 response
// and logs it with the stack trace. http.ErrAbortHandler is re-raised so that
// net/http aborts the connection.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logging.WithRequestID(r.Context(), logger).Error("panic recovered",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)

				if rw, ok := w.(*responsewriter.ResponseWriter); ok && rw.HeaderWritten() {
					return
				}
				respond.SafeError(w, http.StatusInternalServerError, fmt.Errorf("panic: %v", rec))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

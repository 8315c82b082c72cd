// Package pathutil resolves the route label of a request for metrics and logs.
//
// The label is the pattern the ServeMux matched ("/users/{id}"), so dynamic
// path segments never create new label values. Requests the mux could not
// match (404, 405) fall back to the raw URL path.
package pathutil

import (
	"context"
	"net/http"
	"strings"
)

type routeKey struct{}

// Route receives the pattern matched for one request. It is created by an
// outer middleware, filled in by Capture and read back after the handler
// returns. A Route belongs to a single request goroutine.
type Route struct {
	pattern string
	set     bool
}

// WithRoute returns a child context carrying a fresh Route.
func WithRoute(ctx context.Context) (context.Context, *Route) {
	route := &Route{}
	return context.WithValue(ctx, routeKey{}, route), route
}

// Ensure returns the Route already carried by ctx, or attaches a new one.
// Middleware layers that each need the route share a single holder this way.
func Ensure(ctx context.Context) (context.Context, *Route) {
	if route := FromContext(ctx); route != nil {
		return ctx, route
	}
	return WithRoute(ctx)
}

// FromContext returns the Route stored by WithRoute, or nil.
func FromContext(ctx context.Context) *Route {
	route, _ := ctx.Value(routeKey{}).(*Route)
	return route
}

// Set records the mux pattern. Only the first call has an effect.
func (r *Route) Set(pattern string) {
	if r == nil || r.set {
		return
	}
	r.pattern = pattern
	r.set = true
}

// Pattern returns the recorded pattern, empty when nothing matched.
func (r *Route) Pattern() string {
	if r == nil {
		return ""
	}
	return r.pattern
}

// Label returns the route label for a request whose raw path was rawPath.
func (r *Route) Label(rawPath string) string {
	return Label(r.Pattern(), rawPath)
}

// Capture wraps a ServeMux. The mux stores the matched pattern on the request
// it was given, so the pattern is read after next returns, including when next
// panics.
func Capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := FromContext(r.Context())
		if route == nil {
			next.ServeHTTP(w, r)
			return
		}
		defer func() { route.Set(r.Pattern) }()
		next.ServeHTTP(w, r)
	})
}

// Label converts a mux pattern such as "GET example.com/users/{id}" into the
// path template "/users/{id}". An empty pattern yields rawPath, and an empty
// rawPath yields "/". Invalid UTF-8 in rawPath is replaced with U+FFFD so the
// result is always a legal Prometheus label value.
//
//	Label("GET /healthz", "/healthz")   // "/healthz"
//	Label("/files/{path...}", "/f/a/b") // "/files/{path...}"
//	Label("GET /{$}", "/")              // "/"
//	Label("", "/does-not-exist")        // "/does-not-exist"
func Label(pattern, rawPath string) string {
	if pattern == "" {
		if rawPath == "" {
			return "/"
		}
		return strings.ToValidUTF8(rawPath, "\uFFFD")
	}

	if _, rest, ok := strings.Cut(pattern, " "); ok {
		pattern = strings.TrimLeft(rest, " \t")
	}
	if i := strings.IndexByte(pattern, '/'); i > 0 {
		pattern = pattern[i:]
	}
	if trimmed := strings.TrimSuffix(pattern, "{$}"); trimmed != "" {
		pattern = trimmed
	}
	return pattern
}

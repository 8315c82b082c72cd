// Package http provides the HTTP handlers and middleware of the API server:
// health, version, fault injection and the Prometheus scrape endpoint, plus
// request timing, logging and panic recovery.
package http

import (
	"net/http"

	"app-metrics/internal/handler/http/respond"
)

// InjectedFaultMessage is the error body of /api/fault when fault injection is on.
const InjectedFaultMessage = "Injected fault"

// StatusResponse is the body of successful health and fault responses.
type StatusResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the body of error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// VersionResponse is the body of /api/version.
type VersionResponse struct {
	Version string `json:"version"`
}

// HealthHandler always answers 200 {"ok":true}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, StatusResponse{OK: true})
	})
}

// VersionHandler reports the configured application version.
func VersionHandler(version string) http.Handler {
	body := VersionResponse{Version: version}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, body)
	})
}

// FaultHandler answers 500 {"error":"Injected fault"} while enabled and
// 200 {"ok":true} otherwise. It lets operators exercise failure-path metrics
// without a real outage.
func FaultHandler(enabled bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if enabled {
			respond.JSON(w, http.StatusInternalServerError, ErrorResponse{Error: InjectedFaultMessage})
			return
		}
		respond.JSON(w, http.StatusOK, StatusResponse{OK: true})
	})
}

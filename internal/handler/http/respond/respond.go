// Package respond writes JSON responses and error bodies.
// Server errors never leak their cause to the client.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Body of every 5xx response produced by SafeError.
const internalErrorMessage = "internal server error"

// JSON writes v as a compact JSON document with the given status code.
// A nil v writes only the status.
func JSON(w http.ResponseWriter, code int, v any) {
	var body []byte
	if v != nil {
		var err error
		body, err = json.Marshal(v)
		if err != nil {
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
			code = http.StatusInternalServerError
			body = []byte(`{"error":"` + internalErrorMessage + `"}`)
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// Error writes {"error": err.Error()} with the given status code.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// SafeError writes err to the client only for 4xx codes. For 5xx codes the
// error is logged and the body is the generic internal error message.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < http.StatusInternalServerError {
		Error(w, code, err)
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.Any("error", err))
	JSON(w, code, map[string]string{"error": internalErrorMessage})
}

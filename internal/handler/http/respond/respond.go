// Package respond writes JSON responses and error bodies for the query API.
// Errors answered with a 5xx status never expose their message to the client.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"newsdigest/internal/observability/logging"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// headers already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, map[string]string{"error": msg})
}

// SafeError answers err with the given status. Client errors (4xx) carry the
// error message. Server errors are logged with secrets masked and answered
// with "internal server error".
func SafeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if err == nil {
		return
	}
	if code < http.StatusInternalServerError {
		Error(w, code, err.Error())
		return
	}

	logger := slog.Default()
	if r != nil {
		logger = logging.WithRequestID(r.Context(), logger)
	}
	logger.Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	Error(w, code, "internal server error")
}

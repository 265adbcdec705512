package middleware

import (
	"fmt"
	"net/http"

	"github.com/felixge/httpsnoop"

	"github.com/mhutton/relay-api/internal/platform/logger"
)

// AccessLog logs one line per served request with response code, duration,
// and bytes written. It runs after RequestID so every line carries the
// request id from the scoped logger.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		logger.FromContext(r.Context()).Info(
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			"status", m.Code,
			"duration_ms", m.Duration.Milliseconds(),
			"bytes", m.Written,
			"remote_addr", r.RemoteAddr,
		)
	})
}

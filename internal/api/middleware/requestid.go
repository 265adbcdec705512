package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mhutton/relay-api/internal/pipeline"
	"github.com/mhutton/relay-api/internal/platform/logger"
)

// RequestIDHeader carries the correlation id between client and server.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request a correlation id, honoring one supplied
// by the client. The id goes into the context for the pipeline, onto a
// request-scoped logger, and back to the client as a response header.
// Apply it before any middleware that logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := pipeline.ContextWithRequestID(r.Context(), id)
		log := logger.FromContext(ctx).With(slog.String("request_id", id))
		ctx = logger.WithContext(ctx, log)

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Envelope is the uniform shape of every response body the API produces,
// success and failure alike.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
	Meta    Meta       `json:"meta"`
}

// ErrorBody is the client-visible error payload.
type ErrorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// Meta carries the response metadata present on every envelope.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId"`
}

// SuccessEnvelope wraps a handler payload.
func SuccessEnvelope(data any, meta Meta) Envelope {
	return Envelope{Success: true, Data: data, Meta: meta}
}

// ErrorEnvelope wraps a pipeline error. The message passes through
// SafeMessage, so internal causes never reach the client.
func ErrorEnvelope(e *Error, meta Meta) Envelope {
	return Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    string(e.Kind),
			Message: e.SafeMessage(),
			Details: e.Fields,
		},
		Meta: meta,
	}
}

// fallbackBody is written when the envelope itself cannot be marshaled.
const fallbackBody = `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"An unexpected error occurred"},"meta":{"timestamp":%q,"requestId":%q}}`

// renderFallback fills in the static fallback envelope.
func renderFallback(ts time.Time, requestID string) string {
	return fmt.Sprintf(fallbackBody, ts.Format(time.RFC3339Nano), requestID)
}

// writeEnvelope finalizes the request's response state and writes it out.
// Headers accumulated on the request's ResponseState are merged in before
// the status line.
func writeEnvelope(w http.ResponseWriter, req *Request, status int, env Envelope, log *slog.Logger) {
	body, err := json.Marshal(env)
	if err != nil {
		log.Error("failed to marshal response envelope",
			"error", err,
			"request_id", env.Meta.RequestID)
		status = http.StatusInternalServerError
		body = []byte(renderFallback(env.Meta.Timestamp, env.Meta.RequestID))
	}

	req.Response.Status = status
	req.Response.Body = body

	header := w.Header()
	for key, values := range req.Response.Header {
		for _, value := range values {
			header.Add(key, value)
		}
	}
	header.Set("Content-Type", "application/json; charset=utf-8")

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Debug("failed to write response body", "error", err)
	}
}

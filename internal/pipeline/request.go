package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mhutton/relay-api/internal/service/auth"
)

// maxRequestBody caps how much of a request body the pipeline buffers.
const maxRequestBody = 1 << 20 // 1 MiB

// Reserved annotation keys written by the pipeline itself. Handlers and
// guards may read them; only the pipeline writes them.
const (
	AnnotationIdentity  = "identity"
	AnnotationRequestID = "requestId"
	AnnotationStartTime = "startTime"
)

// Request is the pipeline's view of one HTTP request. It carries the
// parsed request data, the response being assembled, and an annotation bag
// that guards use to pass request-scoped values to handlers.
//
// A Request is confined to the goroutine serving the request and is not
// safe for concurrent use.
type Request struct {
	Method     string
	Path       string
	Params     map[string]string // named path parameters from the matched route
	Query      url.Values
	Header     http.Header
	Body       []byte
	RemoteAddr string

	// Response accumulates headers and, eventually, the status and body
	// of the terminal response.
	Response *ResponseState

	annotations map[string]any
}

// ResponseState is the response in progress for a Request.
type ResponseState struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewRequest buffers an http.Request into a pipeline Request. The request
// id and start time are recorded under their reserved annotation keys.
// A body read failure returns the partially built Request alongside a
// KindValidation error.
func NewRequest(r *http.Request, requestID string, start time.Time) (*Request, error) {
	req := &Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		Query:      r.URL.Query(),
		Header:     r.Header,
		RemoteAddr: r.RemoteAddr,
		Response:   &ResponseState{Header: make(http.Header)},
		annotations: map[string]any{
			AnnotationRequestID: requestID,
			AnnotationStartTime: start,
		},
	}

	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
		if err != nil {
			return req, Validation([]FieldError{
				{Field: "body", Message: "could not be read"},
			})
		}
		if len(body) > maxRequestBody {
			return req, Validation([]FieldError{
				{Field: "body", Message: fmt.Sprintf("must not exceed %d bytes", maxRequestBody)},
			})
		}
		req.Body = body
	}

	return req, nil
}

// Annotation returns the value stored under key, if any.
func (r *Request) Annotation(key string) (any, bool) {
	v, ok := r.annotations[key]
	return v, ok
}

// SetAnnotation stores a request-scoped value under key.
func (r *Request) SetAnnotation(key string, value any) {
	if r.annotations == nil {
		r.annotations = make(map[string]any)
	}
	r.annotations[key] = value
}

// RequestID returns the request's correlation id.
func (r *Request) RequestID() string {
	if id, ok := r.annotations[AnnotationRequestID].(string); ok {
		return id
	}
	return ""
}

// StartTime returns the instant the pipeline accepted the request.
func (r *Request) StartTime() time.Time {
	if t, ok := r.annotations[AnnotationStartTime].(time.Time); ok {
		return t
	}
	return time.Time{}
}

// Identity returns the authenticated identity, if an auth guard has run.
func (r *Request) Identity() (*auth.Identity, bool) {
	id, ok := r.annotations[AnnotationIdentity].(*auth.Identity)
	return id, ok
}

// SetIdentity records the authenticated identity for downstream stages.
func (r *Request) SetIdentity(identity *auth.Identity) {
	r.SetAnnotation(AnnotationIdentity, identity)
}

type ctxKey int

const requestIDCtxKey ctxKey = iota

// ContextWithRequestID returns a context carrying the request id.
// Middleware sets it before the dispatcher runs.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, id)
}

// RequestIDFromContext returns the request id stored in the context, or ""
// if none is set.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDCtxKey).(string); ok {
		return id
	}
	return ""
}

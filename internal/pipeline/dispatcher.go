package pipeline

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mhutton/relay-api/internal/platform/logger"
	"github.com/mhutton/relay-api/internal/ratelimit"
	"github.com/mhutton/relay-api/internal/redact"
)

// routeLabelUnmatched is the metrics label for requests no route claims.
const routeLabelUnmatched = "unmatched"

// Recorder receives request metrics from the dispatcher. internal/metrics
// satisfies it; a nil Recorder disables recording.
type Recorder interface {
	IncInFlight()
	DecInFlight()
	RecordRequest(method, route string, status int, elapsed time.Duration)
}

// Options carries the collaborators guards and the dispatcher need.
type Options struct {
	// Verifier checks bearer tokens. Required when any route declares
	// RequireAuth.
	Verifier TokenVerifier

	// RateLimits counts requests per window. Required when any route
	// declares a RateLimit.
	RateLimits ratelimit.Store

	// KeyFn overrides how rate limits identify clients.
	// Defaults to IdentityOrAddrKey.
	KeyFn KeyFunc

	// Logger is the fallback logger when the request context carries
	// none. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics receives per-request measurements. Optional.
	Metrics Recorder

	// TimeFunc supplies the clock. Defaults to time.Now.
	TimeFunc func() time.Time

	validate *validator.Validate
}

func (o Options) timeFunc() func() time.Time {
	if o.TimeFunc != nil {
		return o.TimeFunc
	}
	return time.Now
}

// Dispatcher matches requests against the registry, runs each route's
// guard chain in declaration order, invokes the handler, and renders the
// response envelope. It implements http.Handler.
type Dispatcher struct {
	registry *Registry
	chains   map[*Route][]Guard
	logger   *slog.Logger
	metrics  Recorder
	now      func() time.Time
}

// NewDispatcher compiles every registered route's requirements into guard
// chains. Registration must be finished: routes added to the registry
// afterwards are not served.
func NewDispatcher(registry *Registry, opts Options) (*Dispatcher, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.validate = validator.New()

	chains := make(map[*Route][]Guard)
	for _, route := range registry.Routes() {
		guards := make([]Guard, 0, len(route.Requirements))
		for _, requirement := range route.Requirements {
			g, err := requirement.guard(opts)
			if err != nil {
				return nil, fmt.Errorf("route %s %s: %w", route.Method, route.Pattern, err)
			}
			guards = append(guards, g)
		}
		chains[route] = guards
	}

	return &Dispatcher{
		registry: registry,
		chains:   chains,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.timeFunc(),
	}, nil
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := d.now()
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, d.logger)

	if d.metrics != nil {
		d.metrics.IncInFlight()
		defer d.metrics.DecInFlight()
	}

	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	req, reqErr := NewRequest(r, requestID, start)

	route := (*Route)(nil)
	defer func() {
		if p := recover(); p != nil {
			log.Error("panic while serving request",
				"panic", p,
				"method", req.Method,
				"path", req.Path,
				"request_id", requestID)
			if req.Response.Status == 0 {
				d.finish(w, req, route, start, log, nil, Internal(fmt.Errorf("panic: %v", p)))
			}
		}
	}()

	if reqErr != nil {
		d.finish(w, req, route, start, log, nil, reqErr)
		return
	}

	matched, params, ok := d.registry.Match(req.Method, req.Path)
	if !ok {
		d.finish(w, req, route, start, log, nil, NotFound("resource"))
		return
	}
	route = matched
	req.Params = params

	for _, g := range d.chains[route] {
		if err := ctx.Err(); err != nil {
			log.Debug("request abandoned",
				"error", err,
				"request_id", requestID)
			return
		}
		if err := g.Check(ctx, req); err != nil {
			log.Debug("guard short-circuited request",
				"guard", g.Name(),
				"method", req.Method,
				"path", req.Path,
				"request_id", requestID)
			d.finish(w, req, route, start, log, nil, err)
			return
		}
	}

	if err := ctx.Err(); err != nil {
		log.Debug("request abandoned",
			"error", err,
			"request_id", requestID)
		return
	}

	data, err := route.Handler(ctx, req)
	d.finish(w, req, route, start, log, data, err)
}

// finish renders the terminal response, logs failures, and records
// metrics. It is the single exit point for every request the dispatcher
// accepts.
func (d *Dispatcher) finish(w http.ResponseWriter, req *Request, route *Route, start time.Time, log *slog.Logger, data any, err error) {
	meta := Meta{Timestamp: d.now().UTC(), RequestID: req.RequestID()}

	var (
		status int
		env    Envelope
	)
	if err != nil {
		e := Coerce(err)
		status = e.Status()
		env = ErrorEnvelope(e, meta)

		if e.RetryAfter > 0 {
			req.Response.Header.Set("Retry-After", retryAfterSeconds(e.RetryAfter))
		}
		d.logError(log, req, e, status)
	} else {
		if result, ok := data.(Result); ok {
			data = result.Data
			if result.Status != 0 {
				req.Response.Status = result.Status
			}
		}
		status = http.StatusOK
		if req.Response.Status != 0 {
			status = req.Response.Status
		}
		env = SuccessEnvelope(data, meta)
	}

	writeEnvelope(w, req, status, env, log)

	if d.metrics != nil {
		label := routeLabelUnmatched
		if route != nil {
			label = route.Pattern
		}
		d.metrics.RecordRequest(req.Method, label, status, d.now().Sub(start))
	}
}

// logError applies the severity policy: server faults are errors, rate
// limiting is a warning, everything else the client did wrong is debug
// noise.
func (d *Dispatcher) logError(log *slog.Logger, req *Request, e *Error, status int) {
	attrs := []any{
		"method", req.Method,
		"path", req.Path,
		"status", status,
		"code", string(e.Kind),
		"request_id", req.RequestID(),
	}

	switch {
	case status >= http.StatusInternalServerError:
		// The full error detail goes to the log only; the client sees
		// the generic message. Credentials inside the chain are masked
		// before the line is emitted.
		log.Error("request failed", append(attrs, "error", redact.Error(e))...)
	case status == http.StatusTooManyRequests:
		log.Warn("request rate limited", attrs...)
	default:
		log.Debug("request rejected", attrs...)
	}
}

// retryAfterSeconds renders a duration as whole seconds, rounded up, with
// a floor of one second.
func retryAfterSeconds(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

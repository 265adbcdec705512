package pipeline

import (
	"context"
	"fmt"
	"time"
)

// Guard is one stage of a route's capability chain. Check returns nil to
// pass the request onward, or an error to short-circuit it. The error's
// kind determines the terminal response.
type Guard interface {
	// Name identifies the guard in logs.
	Name() string

	Check(ctx context.Context, req *Request) error
}

// Requirement is a declarative capability attached to a route at
// registration time. The dispatcher compiles each requirement into a guard
// once, when it is built; a requirement that cannot be satisfied (say, a
// rate limit with no counter store configured) fails dispatcher
// construction rather than a live request.
type Requirement interface {
	guard(opts Options) (Guard, error)
}

// RateLimit requires that requests to the route stay under MaxRequests per
// fixed Window, counted per client key.
type RateLimit struct {
	// Key names the counter bucket. Routes sharing a Key share a budget.
	Key string

	// Window is the fixed window length. Must be positive.
	Window time.Duration

	// MaxRequests is the number of requests allowed per window per
	// client. Must be positive.
	MaxRequests int
}

func (r RateLimit) guard(opts Options) (Guard, error) {
	if opts.RateLimits == nil {
		return nil, fmt.Errorf("rate limit requirement %q: no counter store configured", r.Key)
	}
	if r.Window <= 0 {
		return nil, fmt.Errorf("rate limit requirement %q: window must be positive", r.Key)
	}
	if r.MaxRequests <= 0 {
		return nil, fmt.Errorf("rate limit requirement %q: max requests must be positive", r.Key)
	}

	keyFn := opts.KeyFn
	if keyFn == nil {
		keyFn = IdentityOrAddrKey
	}

	return &rateLimitGuard{
		store:  opts.RateLimits,
		keyFn:  keyFn,
		now:    opts.timeFunc(),
		bucket: r.Key,
		window: r.Window,
		max:    r.MaxRequests,
	}, nil
}

// RequireAuth requires a valid bearer token. On success the verified
// identity is stored in the request's annotation bag under
// AnnotationIdentity.
type RequireAuth struct{}

func (RequireAuth) guard(opts Options) (Guard, error) {
	if opts.Verifier == nil {
		return nil, fmt.Errorf("auth requirement: no token verifier configured")
	}
	return &authGuard{verifier: opts.Verifier}, nil
}

// ValidateSchema requires that one part of the request conforms to a
// field schema. All fields are checked and every failure is reported.
type ValidateSchema struct {
	Target Target
	Schema Schema
}

func (v ValidateSchema) guard(opts Options) (Guard, error) {
	return newValidateGuard(v, opts.validate)
}

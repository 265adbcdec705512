package pipeline

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/mhutton/relay-api/internal/platform/logger"
	"github.com/mhutton/relay-api/internal/ratelimit"
)

// KeyFunc derives the client identity a rate limit counts against.
type KeyFunc func(req *Request) string

// IdentityOrAddrKey is the default KeyFunc. A request that carries a
// verified identity counts against that identity no matter which address
// it arrives from; anonymous requests count per client address.
func IdentityOrAddrKey(req *Request) string {
	if identity, ok := req.Identity(); ok && identity != nil {
		return "user:" + identity.UserID.String()
	}
	return ClientAddrKey(req)
}

// ClientAddrKey keys counters by the client IP without the port, falling
// back to the raw remote address when it cannot be split.
func ClientAddrKey(req *Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if req.RemoteAddr != "" {
		return req.RemoteAddr
	}
	return "unknown"
}

// rateLimitGuard enforces a fixed-window limit per client key.
type rateLimitGuard struct {
	store  ratelimit.Store
	keyFn  KeyFunc
	now    func() time.Time
	bucket string
	window time.Duration
	max    int
}

func (g *rateLimitGuard) Name() string { return "ratelimit" }

func (g *rateLimitGuard) Check(ctx context.Context, req *Request) error {
	now := g.now()
	key := g.bucket + ":" + g.keyFn(req)

	count, reset, err := g.store.Incr(ctx, key, g.window, now)
	if err != nil {
		// An unreachable counter store must not take the API down;
		// the request proceeds uncounted.
		logger.FromContext(ctx).Warn("rate limit store unavailable, allowing request",
			"error", err,
			"bucket", g.bucket)
		return nil
	}

	remaining := int64(g.max) - count
	if remaining < 0 {
		remaining = 0
	}
	h := req.Response.Header
	h.Set("X-RateLimit-Limit", strconv.Itoa(g.max))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

	if count > int64(g.max) {
		return RateLimited(reset.Sub(now))
	}
	return nil
}

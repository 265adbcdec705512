package pipeline

import (
	"context"
	"errors"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhutton/relay-api/internal/ratelimit"
	"github.com/mhutton/relay-api/internal/service/auth"
)

// failingStore simulates an unreachable counter backend.
type failingStore struct{ err error }

func (s failingStore) Incr(_ context.Context, _ string, _ time.Duration, _ time.Time) (int64, time.Time, error) {
	return 0, time.Time{}, s.err
}

func newRateLimitGuard(t *testing.T, r RateLimit, store ratelimit.Store, now time.Time) Guard {
	t.Helper()

	guard, err := r.guard(Options{
		RateLimits: store,
		TimeFunc:   func() time.Time { return now },
	})
	require.NoError(t, err)
	return guard
}

func newRateLimitRequest(t *testing.T, remoteAddr string) *Request {
	t.Helper()

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = remoteAddr
	req, err := NewRequest(r, uuid.NewString(), time.Now())
	require.NoError(t, err)
	return req
}

func TestRateLimitRequirementValidation(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()

	tests := []struct {
		name string
		req  RateLimit
		opts Options
	}{
		{
			name: "no counter store",
			req:  RateLimit{Key: "login", Window: time.Minute, MaxRequests: 10},
			opts: Options{},
		},
		{
			name: "zero window",
			req:  RateLimit{Key: "login", MaxRequests: 10},
			opts: Options{RateLimits: store},
		},
		{
			name: "zero max requests",
			req:  RateLimit{Key: "login", Window: time.Minute},
			opts: Options{RateLimits: store},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tc.req.guard(tc.opts)
			assert.Error(t, err)
		})
	}
}

func TestRateLimitGuardAllowsUnderLimit(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	guard := newRateLimitGuard(t, RateLimit{Key: "login", Window: time.Minute, MaxRequests: 3},
		ratelimit.NewMemoryStore(), now)

	req := newRateLimitRequest(t, "10.0.0.1:50000")
	for i := 0; i < 3; i++ {
		require.NoError(t, guard.Check(context.Background(), req))
	}

	h := req.Response.Header
	assert.Equal(t, "3", h.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", h.Get("X-RateLimit-Remaining"))

	windowEnd := time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC)
	assert.Equal(t, strconv.FormatInt(windowEnd.Unix(), 10), h.Get("X-RateLimit-Reset"))
}

func TestRateLimitGuardBlocksOverLimit(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	guard := newRateLimitGuard(t, RateLimit{Key: "login", Window: time.Minute, MaxRequests: 2},
		ratelimit.NewMemoryStore(), now)

	req := newRateLimitRequest(t, "10.0.0.1:50000")
	require.NoError(t, guard.Check(context.Background(), req))
	require.NoError(t, guard.Check(context.Background(), req))

	err := guard.Check(context.Background(), req)
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindRateLimited, e.Kind)

	// The window ends at 12:01:00, 30s after the fixed test clock.
	assert.Equal(t, 30*time.Second, e.RetryAfter)
	assert.Equal(t, "0", req.Response.Header.Get("X-RateLimit-Remaining"))
}

func TestRateLimitGuardCountsClientsSeparately(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	guard := newRateLimitGuard(t, RateLimit{Key: "login", Window: time.Minute, MaxRequests: 1},
		ratelimit.NewMemoryStore(), now)

	first := newRateLimitRequest(t, "10.0.0.1:50000")
	second := newRateLimitRequest(t, "10.0.0.2:50000")

	require.NoError(t, guard.Check(context.Background(), first))
	require.Error(t, guard.Check(context.Background(), first))

	// A different client address has its own budget.
	require.NoError(t, guard.Check(context.Background(), second))
}

func TestRateLimitGuardKeysAuthenticatedClientsByIdentity(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	guard := newRateLimitGuard(t, RateLimit{Key: "export", Window: time.Minute, MaxRequests: 1},
		ratelimit.NewMemoryStore(), now)

	alice := &auth.Identity{UserID: uuid.New(), Username: "alice", Role: "user"}

	// The same user shares one budget across addresses.
	home := newRateLimitRequest(t, "10.0.0.1:50000")
	home.SetIdentity(alice)
	office := newRateLimitRequest(t, "203.0.113.7:41000")
	office.SetIdentity(alice)

	require.NoError(t, guard.Check(context.Background(), home))
	require.Error(t, guard.Check(context.Background(), office))

	// A different user behind the first address still gets through.
	bob := newRateLimitRequest(t, "10.0.0.1:50000")
	bob.SetIdentity(&auth.Identity{UserID: uuid.New(), Username: "bob", Role: "user"})
	require.NoError(t, guard.Check(context.Background(), bob))
}

func TestRateLimitGuardFailsOpen(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	guard := newRateLimitGuard(t, RateLimit{Key: "login", Window: time.Minute, MaxRequests: 1},
		failingStore{err: errors.New("connection refused")}, now)

	req := newRateLimitRequest(t, "10.0.0.1:50000")
	for i := 0; i < 5; i++ {
		assert.NoError(t, guard.Check(context.Background(), req))
	}
}

func TestClientAddrKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{"host and port", "10.0.0.1:50000", "10.0.0.1"},
		{"ipv6 host and port", "[2001:db8::1]:50000", "2001:db8::1"},
		{"bare host", "10.0.0.1", "10.0.0.1"},
		{"empty", "", "unknown"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ClientAddrKey(&Request{RemoteAddr: tc.remoteAddr}))
		})
	}
}

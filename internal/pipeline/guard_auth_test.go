package pipeline

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhutton/relay-api/internal/service/auth"
)

// stubVerifier returns a fixed identity or error for any token.
type stubVerifier struct {
	identity *auth.Identity
	err      error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*auth.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func newGuardRequest(t *testing.T, headers map[string]string) *Request {
	t.Helper()

	r := httptest.NewRequest("GET", "/users", nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	req, err := NewRequest(r, uuid.NewString(), time.Now())
	require.NoError(t, err)
	return req
}

func TestAuthGuardRequiresConfiguredVerifier(t *testing.T) {
	t.Parallel()

	_, err := RequireAuth{}.guard(Options{})
	assert.Error(t, err)
}

func TestAuthGuardRejectsMissingOrMalformedHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"no token", "Bearer"},
		{"empty token", "Bearer "},
		{"lowercase scheme", "bearer abc"},
	}

	guard, err := RequireAuth{}.guard(Options{Verifier: &stubVerifier{}})
	require.NoError(t, err)

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			headers := map[string]string{}
			if tc.header != "" {
				headers["Authorization"] = tc.header
			}
			req := newGuardRequest(t, headers)

			err := guard.Check(context.Background(), req)
			require.Error(t, err)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, KindUnauthorized, e.Kind)

			_, ok := req.Identity()
			assert.False(t, ok)
		})
	}
}

func TestAuthGuardMapsVerifierErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind Kind
	}{
		{"expired token", auth.ErrExpiredToken, KindTokenExpired},
		{"invalid token", auth.ErrInvalidToken, KindTokenInvalid},
		{"wrapped expired token", errors.Join(errors.New("verify"), auth.ErrExpiredToken), KindTokenExpired},
		{"unexpected failure", errors.New("key store down"), KindInternal},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			guard, err := RequireAuth{}.guard(Options{Verifier: &stubVerifier{err: tc.err}})
			require.NoError(t, err)

			req := newGuardRequest(t, map[string]string{"Authorization": "Bearer some-token"})

			checkErr := guard.Check(context.Background(), req)
			require.Error(t, checkErr)

			var e *Error
			require.ErrorAs(t, checkErr, &e)
			assert.Equal(t, tc.wantKind, e.Kind)
		})
	}
}

func TestAuthGuardStoresIdentity(t *testing.T) {
	t.Parallel()

	identity := &auth.Identity{UserID: uuid.New(), Username: "alice", Role: "admin"}
	guard, err := RequireAuth{}.guard(Options{Verifier: &stubVerifier{identity: identity}})
	require.NoError(t, err)

	req := newGuardRequest(t, map[string]string{"Authorization": "Bearer some-token"})

	require.NoError(t, guard.Check(context.Background(), req))

	got, ok := req.Identity()
	require.True(t, ok)
	assert.Equal(t, identity, got)
}

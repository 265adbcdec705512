package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(_ context.Context, _ *Request) (any, error) {
	return nil, nil
}

func TestRegistryHandleRejectsInvalidPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
	}{
		{"empty", ""},
		{"no leading slash", "users/{id}"},
		{"empty segment", "/users//posts"},
		{"unnamed parameter", "/users/{}"},
		{"mixed literal and parameter", "/users/v{id}"},
		{"repeated parameter name", "/orgs/{id}/users/{id}"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			reg := NewRegistry()
			err := reg.Handle("GET", tc.pattern, noopHandler)
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}

func TestRegistryHandleRejectsNilHandler(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	err := reg.Handle("GET", "/users", nil)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestRegistryHandleRejectsDuplicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		first  string
		second string
	}{
		{"identical pattern", "/users/{id}", "/users/{id}"},
		{"parameter renamed", "/users/{id}", "/users/{userID}"},
		{"trailing slash", "/users", "/users/"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			reg := NewRegistry()
			require.NoError(t, reg.Handle("GET", tc.first, noopHandler))

			err := reg.Handle("GET", tc.second, noopHandler)
			assert.ErrorIs(t, err, ErrDuplicateRoute)
		})
	}
}

func TestRegistryHandleAllowsDistinctRoutes(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Handle("GET", "/users/{id}", noopHandler))

	// Same pattern, different method.
	require.NoError(t, reg.Handle("DELETE", "/users/{id}", noopHandler))
	// Same prefix, different shape.
	require.NoError(t, reg.Handle("GET", "/users/search", noopHandler))
	require.NoError(t, reg.Handle("GET", "/users/{id}/posts", noopHandler))

	assert.Len(t, reg.Routes(), 4)
}

func TestRegistryMatchExtractsParams(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Handle("GET", "/orgs/{org}/users/{id}", noopHandler))

	route, params, ok := reg.Match("GET", "/orgs/acme/users/42")
	require.True(t, ok)
	assert.Equal(t, "/orgs/{org}/users/{id}", route.Pattern)
	assert.Equal(t, map[string]string{"org": "acme", "id": "42"}, params)
}

func TestRegistryMatchIgnoresTrailingSlash(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Handle("GET", "/users", noopHandler))

	_, _, ok := reg.Match("GET", "/users/")
	assert.True(t, ok)
}

func TestRegistryMatchMisses(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Handle("GET", "/users/{id}", noopHandler))

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"unknown path", "GET", "/posts/42"},
		{"wrong method", "POST", "/users/42"},
		{"extra segment", "GET", "/users/42/posts"},
		{"missing segment", "GET", "/users"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, ok := reg.Match(tc.method, tc.path)
			assert.False(t, ok)
		})
	}
}

func TestRegistryMatchPrefersLiteralOverParam(t *testing.T) {
	t.Parallel()

	// Registration order must not influence the winner.
	orders := []struct {
		name     string
		patterns []string
	}{
		{"literal first", []string{"/users/search", "/users/{id}"}},
		{"param first", []string{"/users/{id}", "/users/search"}},
	}

	for _, order := range orders {
		order := order
		t.Run(order.name, func(t *testing.T) {
			t.Parallel()
			reg := NewRegistry()
			for _, p := range order.patterns {
				require.NoError(t, reg.Handle("GET", p, noopHandler))
			}

			route, params, ok := reg.Match("GET", "/users/search")
			require.True(t, ok)
			assert.Equal(t, "/users/search", route.Pattern)
			assert.Empty(t, params)

			route, params, ok = reg.Match("GET", "/users/42")
			require.True(t, ok)
			assert.Equal(t, "/users/{id}", route.Pattern)
			assert.Equal(t, "42", params["id"])
		})
	}
}

func TestRegistryMatchRanksByLiteralCount(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Handle("GET", "/orgs/{org}/settings/billing", noopHandler))
	require.NoError(t, reg.Handle("GET", "/orgs/acme/{page}/{tab}", noopHandler))

	// Both match, but three literal segments beat two, even though the
	// loser keeps a literal at the earlier position.
	route, params, ok := reg.Match("GET", "/orgs/acme/settings/billing")
	require.True(t, ok)
	assert.Equal(t, "/orgs/{org}/settings/billing", route.Pattern)
	assert.Equal(t, "acme", params["org"])
}

func TestRegistryMatchPrefersLeftmostLiteral(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Handle("GET", "/files/{name}/meta", noopHandler))
	require.NoError(t, reg.Handle("GET", "/files/info/{section}", noopHandler))

	// Equal literal counts; the literal in the second segment wins.
	route, _, ok := reg.Match("GET", "/files/info/meta")
	require.True(t, ok)
	assert.Equal(t, "/files/info/{section}", route.Pattern)
}

func TestRegistryMethodIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Handle("get", "/users", noopHandler))

	_, _, ok := reg.Match("GET", "/users")
	assert.True(t, ok)
}

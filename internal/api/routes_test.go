package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhutton/relay-api/internal/mocks"
	"github.com/mhutton/relay-api/internal/pipeline"
	"github.com/mhutton/relay-api/internal/ratelimit"
)

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	authHandler := NewAuthHandler(users, &mocks.MockTokenService{}, &mocks.MockPasswordHasher{})
	userHandler := NewUserHandler(users)

	reg := pipeline.NewRegistry()
	require.NoError(t, RegisterRoutes(reg, authHandler, userHandler))
	assert.Len(t, reg.Routes(), 5)

	// Every declared requirement must compile into a guard chain.
	_, err := pipeline.NewDispatcher(reg, pipeline.Options{
		Verifier:   &mocks.MockTokenService{},
		RateLimits: ratelimit.NewMemoryStore(),
	})
	require.NoError(t, err)

	// Registering the same table twice collides on every route.
	err = RegisterRoutes(reg, authHandler, userHandler)
	assert.ErrorIs(t, err, pipeline.ErrDuplicateRoute)
}

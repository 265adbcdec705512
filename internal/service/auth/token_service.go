package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity describes the authenticated principal carried inside a token.
type Identity struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID

	// Username is the login name of the user.
	Username string

	// Role is the authorization role of the user ("user" or "admin").
	Role string
}

// TokenService defines operations for issuing and verifying authentication tokens.
type TokenService interface {
	// Issue creates a signed token carrying the given identity.
	// Returns the token string or an error if signing fails.
	Issue(ctx context.Context, identity Identity) (string, error)

	// Verify validates the provided token string and extracts the identity.
	// Returns ErrExpiredToken if the token's lifetime has elapsed, or
	// ErrInvalidToken for any other verification failure (bad signature,
	// malformed token, wrong signing method).
	Verify(ctx context.Context, tokenString string) (*Identity, error)
}

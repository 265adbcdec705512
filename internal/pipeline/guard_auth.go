package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/mhutton/relay-api/internal/service/auth"
)

// TokenVerifier checks a bearer token and returns the identity it carries.
// auth.TokenService satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*auth.Identity, error)
}

// authGuard extracts and verifies the bearer token on a request.
type authGuard struct {
	verifier TokenVerifier
}

func (g *authGuard) Name() string { return "auth" }

func (g *authGuard) Check(ctx context.Context, req *Request) error {
	header := req.Header.Get("Authorization")
	if header == "" {
		return Unauthorized("authorization header is required")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return Unauthorized("invalid authorization header format, expected 'Bearer {token}'")
	}

	identity, err := g.verifier.Verify(ctx, parts[1])
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return NewError(KindTokenExpired, "token has expired")
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
			return NewError(KindTokenInvalid, "token is invalid")
		default:
			return Internal(err)
		}
	}

	req.SetIdentity(identity)
	return nil
}

package mocks

import (
	"context"

	"github.com/mhutton/relay-api/internal/service/auth"
)

// MockTokenService implements auth.TokenService for testing.
type MockTokenService struct {
	IssueFn  func(ctx context.Context, identity auth.Identity) (string, error)
	VerifyFn func(ctx context.Context, tokenString string) (*auth.Identity, error)

	// Defaults used when the function fields are nil.
	Token     string
	Identity  *auth.Identity
	IssueErr  error
	VerifyErr error
}

var _ auth.TokenService = (*MockTokenService)(nil)

// Issue implements auth.TokenService.
func (m *MockTokenService) Issue(ctx context.Context, identity auth.Identity) (string, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, identity)
	}
	if m.IssueErr != nil {
		return "", m.IssueErr
	}
	if m.Token != "" {
		return m.Token, nil
	}
	return "mock-token", nil
}

// Verify implements auth.TokenService.
func (m *MockTokenService) Verify(ctx context.Context, tokenString string) (*auth.Identity, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, tokenString)
	}
	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}
	if m.Identity != nil {
		return m.Identity, nil
	}
	return nil, auth.ErrInvalidToken
}

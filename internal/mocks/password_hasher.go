package mocks

import (
	"errors"

	"github.com/mhutton/relay-api/internal/service/auth"
)

// ErrMockPasswordMismatch is returned by MockPasswordHasher.Compare when
// ShouldSucceed is false.
var ErrMockPasswordMismatch = errors.New("mock password mismatch")

// MockPasswordHasher implements auth.PasswordHasher for testing without
// paying the bcrypt cost.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error

	// ShouldSucceed controls the default Compare outcome.
	ShouldSucceed bool
	// HashErr makes the default Hash fail.
	HashErr error
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements auth.PasswordHasher. The default marks the input so
// tests can recognize hashed values.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return "hashed:" + password, nil
}

// Compare implements auth.PasswordHasher.
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return ErrMockPasswordMismatch
}

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mhutton/relay-api/internal/domain"
)

// UserFilter narrows the result set of UserStore.List.
// A zero-value filter matches all users.
type UserFilter struct {
	// Role restricts results to users with the given role when non-empty.
	Role string

	// Query restricts results to usernames containing the given substring
	// (case-insensitive) when non-empty.
	Query string

	// Limit caps the number of returned users. Zero means no cap.
	Limit int
}

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// The user must carry a HashedPassword; stores never hash plaintext.
	// Returns ErrUsernameExists if the username is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List retrieves users matching the filter, ordered by username.
	// An empty result is not an error.
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) UserStore
}

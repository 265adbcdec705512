package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mhutton/relay-api/internal/domain"
	"github.com/mhutton/relay-api/internal/store"
)

// MockUserStore implements store.UserStore for testing.
type MockUserStore struct {
	// Function fields override individual methods.
	CreateFn        func(ctx context.Context, user *domain.User) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	ListFn          func(ctx context.Context, filter store.UserFilter) ([]*domain.User, error)

	// Users backs the default implementations, keyed by username.
	Users map[string]*domain.User

	// Errors returned by the default implementations when set.
	CreateError error
	GetError    error
	ListError   error
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a mock store with an empty user map.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[string]*domain.User),
	}
}

// Create implements store.UserStore.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if m.CreateError != nil {
		return m.CreateError
	}

	if _, exists := m.Users[user.Username]; exists {
		return store.ErrUsernameExists
	}
	m.Users[user.Username] = user
	return nil
}

// GetByID implements store.UserStore.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}

	for _, user := range m.Users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByUsername implements store.UserStore.
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}

	user, exists := m.Users[username]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// List implements store.UserStore.
func (m *MockUserStore) List(ctx context.Context, filter store.UserFilter) ([]*domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	if m.ListError != nil {
		return nil, m.ListError
	}

	var out []*domain.User
	for _, user := range m.Users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Query != "" &&
			!strings.Contains(strings.ToLower(user.Username), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, user)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// WithTx implements store.UserStore. The mock has no transactional state,
// so it returns itself.
func (m *MockUserStore) WithTx(_ *sql.Tx) store.UserStore {
	return m
}

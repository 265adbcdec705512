// Package memory provides in-memory implementations of the data storage
// interfaces defined in the internal/store package. It backs the server
// when no database is configured and keeps unit tests free of external
// dependencies.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mhutton/relay-api/internal/domain"
	"github.com/mhutton/relay-api/internal/store"
)

// UserStore implements the store.UserStore interface with an in-memory map.
// It is safe for concurrent use.
type UserStore struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]domain.User
	byUsername map[string]uuid.UUID
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:       make(map[uuid.UUID]domain.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if user.HashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[user.Username]; exists {
		return store.ErrUsernameExists
	}
	if _, exists := s.byID[user.ID]; exists {
		return store.ErrDuplicate
	}

	s.byID[user.ID] = *user
	s.byUsername[user.Username] = user.ID
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	user := s.byID[id]
	return &user, nil
}

// List implements store.UserStore.List
// Results are ordered by username for deterministic pagination.
func (s *UserStore) List(ctx context.Context, filter store.UserFilter) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []*domain.User
	for _, user := range s.byID {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Query != "" &&
			!strings.Contains(strings.ToLower(user.Username), strings.ToLower(filter.Query)) {
			continue
		}
		u := user
		users = append(users, &u)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})

	if filter.Limit > 0 && len(users) > filter.Limit {
		users = users[:filter.Limit]
	}
	return users, nil
}

// WithTx implements store.UserStore.WithTx
// The in-memory store has no transaction support, so the same store is
// returned unchanged.
func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return s
}

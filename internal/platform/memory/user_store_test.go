package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mhutton/relay-api/internal/domain"
	"github.com/mhutton/relay-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, username, role string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(username, "correct-horse-battery", role)
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$fakehashfortesting"
	user.Password = ""
	return user
}

func TestUserStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewUserStore()

	user := newTestUser(t, "alice", domain.RoleUser)
	require.NoError(t, s.Create(ctx, user))

	byID, err := s.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, byID.Username)

	byName, err := s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	// Mutating the returned user must not affect the stored copy.
	byName.Username = "mallory"
	again, err := s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)
}

func TestUserStore_DuplicateUsername(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewUserStore()

	require.NoError(t, s.Create(ctx, newTestUser(t, "alice", domain.RoleUser)))

	err := s.Create(ctx, newTestUser(t, "alice", domain.RoleAdmin))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUsernameExists)
	assert.True(t, store.IsDuplicateError(err))
}

func TestUserStore_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewUserStore()

	_, err := s.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = s.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserStore_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewUserStore()

	require.NoError(t, s.Create(ctx, newTestUser(t, "carol", domain.RoleAdmin)))
	require.NoError(t, s.Create(ctx, newTestUser(t, "alice", domain.RoleUser)))
	require.NoError(t, s.Create(ctx, newTestUser(t, "albert", domain.RoleUser)))

	t.Run("all users ordered by username", func(t *testing.T) {
		users, err := s.List(ctx, store.UserFilter{})
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, "albert", users[0].Username)
		assert.Equal(t, "alice", users[1].Username)
		assert.Equal(t, "carol", users[2].Username)
	})

	t.Run("filter by role", func(t *testing.T) {
		users, err := s.List(ctx, store.UserFilter{Role: domain.RoleAdmin})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "carol", users[0].Username)
	})

	t.Run("filter by substring is case-insensitive", func(t *testing.T) {
		users, err := s.List(ctx, store.UserFilter{Query: "AL"})
		require.NoError(t, err)
		require.Len(t, users, 2)
	})

	t.Run("limit caps results", func(t *testing.T) {
		users, err := s.List(ctx, store.UserFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "albert", users[0].Username)
	})

	t.Run("no match is empty, not an error", func(t *testing.T) {
		users, err := s.List(ctx, store.UserFilter{Query: "zed"})
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func TestUserStore_ConcurrentCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewUserStore()

	const n = 32
	users := make([]*domain.User, n)
	for i := range users {
		users[i] = newTestUser(t, fmt.Sprintf("user-%03d", i), domain.RoleUser)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Create(ctx, users[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "create %d", i)
	}

	listed, err := s.List(ctx, store.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, listed, n)
}

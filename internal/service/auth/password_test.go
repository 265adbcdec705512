package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	// MinCost keeps the test fast; production uses the default cost.
	hasher := NewBcryptHasher(bcrypt.MinCost)

	t.Run("hash and compare roundtrip", func(t *testing.T) {
		hashed, err := hasher.Hash("correct-horse-battery")
		require.NoError(t, err)
		require.NotEmpty(t, hashed)
		assert.NotEqual(t, "correct-horse-battery", hashed)

		assert.NoError(t, hasher.Compare(hashed, "correct-horse-battery"))
	})

	t.Run("mismatch is rejected", func(t *testing.T) {
		hashed, err := hasher.Hash("correct-horse-battery")
		require.NoError(t, err)

		err = hasher.Compare(hashed, "wrong-password")
		require.Error(t, err)
		assert.ErrorIs(t, err, bcrypt.ErrMismatchedHashAndPassword)
	})

	t.Run("garbage hash is rejected", func(t *testing.T) {
		err := hasher.Compare("not-a-bcrypt-hash", "anything")
		assert.Error(t, err)
	})

	t.Run("zero cost falls back to default", func(t *testing.T) {
		h := NewBcryptHasher(0)
		assert.Equal(t, bcrypt.DefaultCost, h.cost)
	})
}

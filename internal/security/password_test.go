package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordHasher(t *testing.T) {
	tests := []struct {
		name         string
		cost         int
		expectedCost int
	}{
		{
			name:         "explicit cost",
			cost:         bcrypt.DefaultCost,
			expectedCost: bcrypt.DefaultCost,
		},
		{
			name:         "cost below minimum falls back to default",
			cost:         0,
			expectedCost: bcrypt.DefaultCost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher := NewPasswordHasher(tt.cost)

			assert.NotNil(t, hasher)
			assert.Equal(t, tt.expectedCost, hasher.cost)
		})
	}
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	// Minimum cost keeps the test fast; the scheme is identical
	hasher := NewPasswordHasher(bcrypt.MinCost)

	t.Run("hash verifies against its plaintext", func(t *testing.T) {
		hash, err := hasher.Hash("secret1")
		require.NoError(t, err)

		assert.NotEqual(t, "secret1", hash)
		assert.True(t, hasher.Verify("secret1", hash))
	})

	t.Run("wrong plaintext does not verify", func(t *testing.T) {
		hash, err := hasher.Hash("secret1")
		require.NoError(t, err)

		assert.False(t, hasher.Verify("wrong", hash))
	})

	t.Run("same plaintext hashed twice yields different hashes that both verify", func(t *testing.T) {
		first, err := hasher.Hash("secret1")
		require.NoError(t, err)
		second, err := hasher.Hash("secret1")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.True(t, hasher.Verify("secret1", first))
		assert.True(t, hasher.Verify("secret1", second))
	})

	t.Run("verify against malformed hash is false", func(t *testing.T) {
		assert.False(t, hasher.Verify("secret1", "not-a-bcrypt-hash"))
	})

	t.Run("hash fails for plaintext over bcrypt limit", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("a", 100))

		assert.Error(t, err)
	})
}

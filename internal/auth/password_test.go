package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("senha-secreta")
	require.NoError(t, err)
	require.NotEqual(t, "senha-secreta", hash)

	require.True(t, hasher.Verify("senha-secreta", hash))
	require.False(t, hasher.Verify("senha-errada", hash))
	require.False(t, hasher.Verify("senha-secreta", "not-a-hash"))
}

func TestPasswordHashIsSalted(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("mesma-senha")
	require.NoError(t, err)
	second, err := hasher.Hash("mesma-senha")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, hasher.Verify("mesma-senha", first))
	require.True(t, hasher.Verify("mesma-senha", second))
}

func TestNewPasswordHasherClampsBadCost(t *testing.T) {
	hasher := NewPasswordHasher(-1)

	hash, err := hasher.Hash("qualquer")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}

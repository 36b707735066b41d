package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, "password123", hash)

	require.NoError(t, CheckPasswordHash("password123", hash))
	require.Error(t, CheckPasswordHash("wrongpassword", hash))
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	hash1, err := HashPassword("password123")
	require.NoError(t, err)
	hash2, err := HashPassword("password123")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2)
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, ComparePassword(hash, "s3cret-pass"))
	require.ErrorIs(t, ComparePassword(hash, "wrong"), ErrInvalidCredentials)
}

package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h, err := HashSecret("password123", bcrypt.MinCost)
	require.NoError(t, err)

	require.True(t, CompareSecret(h, "password123"))
	require.False(t, CompareSecret(h, "password124"))
	require.False(t, CompareSecret(h, ""))
}

func TestHashSecret_DefaultCost(t *testing.T) {
	h, err := HashSecret("admin123", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost(h)
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHashSecret_InvalidCost(t *testing.T) {
	_, err := HashSecret("x", bcrypt.MaxCost+1)
	require.Error(t, err)
}

func TestCompareSecret_NilHash(t *testing.T) {
	require.False(t, CompareSecret(nil, "gophauth-dummy-secret"))
}

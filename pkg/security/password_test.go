package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret12")
	require.NoError(t, err)
	assert.NotEqual(t, "secret12", hash)

	assert.NoError(t, h.Compare(hash, "secret12"))
	assert.ErrorIs(t, h.Compare(hash, "secret13"), ErrMismatch)
}

func TestCompareRejectsGarbageHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	err := h.Compare("not-a-hash", "secret12")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}

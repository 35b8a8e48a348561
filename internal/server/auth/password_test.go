package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)

	assert.True(t, h.Verify(hash, "pw1"))
	assert.False(t, h.Verify(hash, "pw2"))
	assert.False(t, h.Verify(hash, ""))
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify(a, "same"))
	assert.True(t, h.Verify(b, "same"))
}

func TestBcryptHasher_MalformedHashNeverMatches(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("not-a-bcrypt-hash", "anything"))
	assert.False(t, h.Verify("", ""))
}

func TestBcryptHasher_TooLong(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("x", 73))
	require.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
	require.ErrorIs(t, err, common.ErrPasswordTooLong)
}

func TestNewBcryptHasher_CostBounds(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(99).cost)
	assert.Equal(t, 10, NewBcryptHasher(10).cost)
}

func TestAnswerDigest(t *testing.T) {
	t.Parallel()
	long := AnswerDigest(strings.Repeat("n", 500))
	assert.Len(t, long, 64)
	assert.LessOrEqual(t, len(long), MaxPasswordBytes)
	assert.Equal(t, AnswerDigest("Ana"), AnswerDigest("Ana"))
	assert.NotEqual(t, AnswerDigest("Ana"), AnswerDigest("ana"))

	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash(long)
	require.NoError(t, err)
	assert.True(t, h.Verify(hash, AnswerDigest(strings.Repeat("n", 500))))
}

package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	for _, password := range []string{"secret1", "correct horse battery staple", "пароль-123", " "} {
		digest, err := h.Hash(password)
		require.NoError(t, err)
		assert.NotEqual(t, password, digest)
		assert.True(t, h.Verify(password, digest), "password %q should verify", password)
		assert.False(t, h.Verify(password+"x", digest), "different password must not verify")
	}
}

func TestBcryptHasher_NonDeterministic(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	first, err := h.Hash("secret1")
	require.NoError(t, err)
	second, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("secret1", first))
	assert.True(t, h.Verify("secret1", second))
}

func TestBcryptHasher_MalformedDigest(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	for _, digest := range []string{"", "plain-text", "$2a$04$short"} {
		assert.False(t, h.Verify("secret1", digest))
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	_, err := h.Hash(strings.Repeat("ы", 40))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNewBcryptHasher_InvalidCost(t *testing.T) {
	t.Parallel()

	_, err := NewBcryptHasher(bcrypt.MaxCost + 1)
	require.ErrorIs(t, err, ErrMisconfigured)
	_, err = NewBcryptHasher(0)
	require.ErrorIs(t, err, ErrMisconfigured)
}

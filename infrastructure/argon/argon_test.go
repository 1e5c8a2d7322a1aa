package argon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher("pepper", FastParams)
	hash, err := h.Hash("secret-pass")
	require.NoError(t, err)
	assert.NotContains(t, hash, "secret-pass")

	ok, err := h.Verify("secret-pass", hash)
	require.NoError(t, err)
	assert.True(t, ok, "expected password to match")

	ok, err = h.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok, "expected password mismatch")
}

func TestVerify_DifferentPepperFails(t *testing.T) {
	hash, err := NewHasher("pepper-a", FastParams).Hash("secret-pass")
	require.NoError(t, err)

	ok, err := NewHasher("pepper-b", FastParams).Verify("secret-pass", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_RejectsBlank(t *testing.T) {
	_, err := NewHasher("p", FastParams).Hash("   ")
	assert.Error(t, err)
}

func TestVerify_MalformedHash(t *testing.T) {
	h := NewHasher("p", FastParams)
	for _, bad := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$abc$def", "$argon2id$v=19$garbage$abc$def"} {
		_, err := h.Verify("x", bad)
		assert.Error(t, err, "hash %q", bad)
	}
}

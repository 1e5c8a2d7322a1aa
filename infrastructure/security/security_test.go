package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSerialNumber(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"123456", true},
		{"1234567890123456", true},
		{"12345", false},
		{"12345678901234567", false},
		{"12345a", false},
		{"ADMIN001", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, ValidateSerialNumber(tc.in), "serial %q", tc.in)
	}
}

func TestGenerateSerialNumber_AlwaysValid(t *testing.T) {
	for _, n := range []int{1, 6, 12, 16, 40} {
		s := GenerateSerialNumber(n)
		assert.True(t, ValidateSerialNumber(s), "generated %q", s)
		assert.NotEqual(t, byte('0'), s[0])
	}
}

func TestGenerateSecureCompanyID(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := GenerateSecureCompanyID(now)
	b := GenerateSecureCompanyID(now)
	assert.True(t, strings.HasPrefix(a, "COMP_"))
	assert.Equal(t, strings.ToUpper(a), a)
	assert.NotEqual(t, a, b)
	assert.False(t, ValidateSerialNumber(a))
}

func TestGenerateSecureToken(t *testing.T) {
	a, b := GenerateSecureToken(), GenerateSecureToken()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Len(t, GenerateVerificationCode(), 8)
}

func TestSanitizeInput(t *testing.T) {
	got := SanitizeInput(`<script>alert("x's")</script>`)
	assert.Equal(t, "&lt;script&gt;alert(&quot;x&#x27;s&quot;)&lt;&#x2F;script&gt;", got)
	assert.Equal(t, "&amp;lt;b&amp;gt;", SanitizeInput("&lt;b&gt;"), "existing entities are escaped, not passed through")
}

func TestCipher_RoundTripAndChecksum(t *testing.T) {
	c, err := NewCipher("backup-secret")
	require.NoError(t, err)

	plain := []byte(`{"products":[]}`)
	enc, err := c.Encrypt(plain)
	require.NoError(t, err)
	assert.NotContains(t, enc, "products")

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, plain, dec)

	sum := c.Checksum(plain)
	assert.True(t, c.VerifyChecksum(plain, sum))
	assert.False(t, c.VerifyChecksum([]byte(`{"products":[1]}`), sum))
}

func TestCipher_WrongKeyFails(t *testing.T) {
	a, err := NewCipher("one")
	require.NoError(t, err)
	b, err := NewCipher("two")
	require.NoError(t, err)

	enc, err := a.Encrypt([]byte("payload"))
	require.NoError(t, err)
	_, err = b.Decrypt(enc)
	assert.Error(t, err)
	assert.NotEqual(t, a.Checksum([]byte("x")), b.Checksum([]byte("x")))
}

func TestNewCipher_RequiresSecret(t *testing.T) {
	_, err := NewCipher("  ")
	assert.Error(t, err)
}

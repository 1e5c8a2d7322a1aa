// Package security holds stateless primitives shared by the store and the
// views: random tokens and identifiers, HTML escaping and format checks.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var serialPattern = regexp.MustCompile(`^\d{6,16}$`)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// GenerateSecureToken returns 32 random bytes hex encoded.
func GenerateSecureToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// GenerateVerificationCode returns a short uppercase code stamped on sales.
func GenerateVerificationCode() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return strings.ToUpper(hex.EncodeToString(buf))
}

// GenerateSecureCompanyID builds COMP_<base36 millis>_<8 random base36>.
// The letters and underscores keep it visually distinct from numeric serials.
func GenerateSecureCompanyID(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper(fmt.Sprintf("COMP_%s_%s", ts, randomString(base36Alphabet, 8)))
}

// GenerateSerialNumber returns a numeric code of the given length without a leading zero.
func GenerateSerialNumber(digits int) string {
	if digits < 6 {
		digits = 6
	}
	if digits > 16 {
		digits = 16
	}
	return randomString("123456789", 1) + randomString("0123456789", digits-1)
}

// ValidateSerialNumber reports whether s is 6 to 16 ASCII digits.
func ValidateSerialNumber(s string) bool {
	return serialPattern.MatchString(s)
}

// SanitizeInput escapes HTML-significant characters. Views that write markup
// by hand pass every user-derived string through it.
func SanitizeInput(s string) string {
	return htmlReplacer.Replace(s)
}

func randomString(alphabet string, n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte(alphabet[0])
			continue
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String()
}

// ConstantTimeEqual compares two tokens without leaking timing.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

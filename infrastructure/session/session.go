// Package session carries the store session token between requests inside a
// signed cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stocksence/infrastructure/clock"
)

const (
	CookieName = "X-Session-Token"
	issuer     = "stocksence"
)

var ErrInvalidToken = errors.New("invalid session token")

func SessionCookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

// ClearCookie expires the session cookie in the browser.
func ClearCookie(secure bool) *http.Cookie {
	return SessionCookie("", -1, secure)
}

// Signer wraps store session tokens in HS256 JWTs.
type Signer struct {
	key   []byte
	clock clock.Clock
}

func NewSigner(key string, c clock.Clock) (*Signer, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("session signing key is required")
	}
	if c == nil {
		c = clock.Real{}
	}
	return &Signer{key: []byte(key), clock: c}, nil
}

// Sign returns a JWT whose subject is token, valid until expiresAt.
func (s *Signer) Sign(token string, expiresAt time.Time) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   token,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse validates signed and returns the store session token it carries.
func (s *Signer) Parse(signed string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// MaxAge is the cookie lifetime in seconds for a session ending at expiresAt.
func (s *Signer) MaxAge(expiresAt time.Time) int {
	secs := int(expiresAt.Sub(s.clock.Now()).Seconds())
	if secs < 1 {
		return -1
	}
	return secs
}

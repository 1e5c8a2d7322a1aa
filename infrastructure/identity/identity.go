package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// ErrUnavailable is returned when no client id is configured.
var ErrUnavailable = errors.New("external identity provider is not configured")

// Assertion is the verified identity handed to the store.
type Assertion struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture,omitempty"`
	VerifiedEmail bool   `json:"verified_email"`
}

// Verifier turns a raw credential into an Assertion.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Assertion, error)
}

// GoogleVerifier validates Google ID tokens against the configured audience.
type GoogleVerifier struct {
	clientID  string
	validator *idtoken.Validator
}

// NewGoogleVerifier returns ErrUnavailable when clientID is blank so callers
// can degrade the feature instead of failing startup.
func NewGoogleVerifier(ctx context.Context, clientID string, httpClient *http.Client) (*GoogleVerifier, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrUnavailable
	}
	opts := []option.ClientOption{}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	v, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create id token validator: %w", err)
	}
	return &GoogleVerifier{clientID: clientID, validator: v}, nil
}

func (g *GoogleVerifier) Verify(ctx context.Context, credential string) (Assertion, error) {
	if g == nil {
		return Assertion{}, ErrUnavailable
	}
	payload, err := g.validator.Validate(ctx, credential, g.clientID)
	if err != nil {
		return Assertion{}, fmt.Errorf("validate id token: %w", err)
	}
	return FromClaims(payload.Subject, payload.Claims)
}

// FromClaims maps OpenID claims to an Assertion.
func FromClaims(subject string, claims map[string]any) (Assertion, error) {
	a := Assertion{ID: subject}
	a.Email, _ = claims["email"].(string)
	a.Name, _ = claims["name"].(string)
	a.Picture, _ = claims["picture"].(string)
	a.VerifiedEmail, _ = claims["email_verified"].(bool)
	if a.ID == "" {
		return Assertion{}, errors.New("identity token has no subject")
	}
	if a.Email == "" {
		return Assertion{}, errors.New("identity token has no email")
	}
	if a.Name == "" {
		a.Name, _, _ = strings.Cut(a.Email, "@")
	}
	return a, nil
}

// Static is a Verifier that returns a fixed assertion per credential.
type Static map[string]Assertion

func (s Static) Verify(_ context.Context, credential string) (Assertion, error) {
	a, ok := s[credential]
	if !ok {
		return Assertion{}, errors.New("unknown credential")
	}
	return a, nil
}

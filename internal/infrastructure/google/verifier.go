package google

import (
	"context"
	"fmt"

	"github.com/vanishmail/internal/domain"
	"google.golang.org/api/idtoken"
)

// Profile holds the verified claims extracted from a Google ID token.
type Profile struct {
	Sub           string
	Email         string
	EmailVerified bool
	DisplayName   string
}

// Verifier verifies Google ID tokens against a specific client ID.
type Verifier struct {
	clientID string
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID}
}

// Verify validates the Google ID token and returns the extracted profile.
// Returns a domain.ErrUnauthorized-wrapped error if the token is invalid.
func (v *Verifier) Verify(ctx context.Context, token string) (*Profile, error) {
	p, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized)
	}
	email, _ := p.Claims["email"].(string)
	emailVerified, _ := p.Claims["email_verified"].(bool)
	name, _ := p.Claims["name"].(string)
	return &Profile{
		Sub:           p.Subject,
		Email:         email,
		EmailVerified: emailVerified,
		DisplayName:   name,
	}, nil
}

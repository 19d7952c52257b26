package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewState generates a cryptographically random 64-character hex token,
// used as the CSRF state parameter in the OAuth redirect flow.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

package mailaddr

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Canonical returns the lower-cased, trimmed form of an email address.
// All lookups and uniqueness checks key on this form.
func Canonical(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// alphabet for generated local parts. Lowercase alphanumeric only, so the
// result is already canonical.
const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomLocalPart generates a random local part of length n for a disposable
// address, e.g. "k3v09q2x7f".
func RandomLocalPart(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}

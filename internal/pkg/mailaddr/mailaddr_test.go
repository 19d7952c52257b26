package mailaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	assert.Equal(t, "a@x.com", Canonical("  A@X.Com "))
	assert.Equal(t, "a@x.com", Canonical("a@x.com"))
	assert.Equal(t, "", Canonical("   "))
}

func TestRandomLocalPart(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		lp, err := RandomLocalPart(10)
		require.NoError(t, err)
		require.Len(t, lp, 10)
		for _, c := range lp {
			ok := (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
			require.True(t, ok, "unexpected char %q", c)
		}
		seen[lp] = true
	}
	// Collisions over 100 draws from a 36^10 space would indicate broken randomness.
	assert.Len(t, seen, 100)
}

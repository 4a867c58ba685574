package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := NewAccessCode(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(accessCodeAlphabet, ch), "unexpected character %q", ch)
		}
		seen[code] = true
	}
	// 50 draws from a 32^6 space colliding down to a handful would mean
	// broken randomness.
	assert.Greater(t, len(seen), 45)
}

func TestNewBearerTokenUnique(t *testing.T) {
	a := NewBearerToken()
	b := NewBearerToken()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

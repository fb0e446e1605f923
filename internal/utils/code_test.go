package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewPoolCode()
		require.NoError(t, err)
		require.Len(t, code, PoolCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(poolCodeAlphabet, r), "unexpected symbol %q in %q", r, code)
		}
		seen[code] = true
	}
	// 100 draws from a 32^6 space colliding down to a handful would mean the
	// generator is broken.
	assert.Greater(t, len(seen), 90)
}

func TestPoolCodeAlphabetExcludesAmbiguousSymbols(t *testing.T) {
	for _, r := range "IO01" {
		assert.False(t, strings.ContainsRune(poolCodeAlphabet, r))
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong-pass"))
}

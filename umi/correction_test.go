package umi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrector(t *testing.T) {
	known := "AAAA\nCCCC\nGGGG\nTTTT"

	tests := []struct {
		umi      string
		expected string
	}{
		{"AAAA", "AAAA"}, // already known
		{"AAAT", "AAAA"}, // one substitution
		{"CAAT", "AAAA"}, // two edits, still unique
		{"AACC", "AACC"}, // equidistant from AAAA and CCCC
		{"ACGT", "ACGT"}, // no unique nearest
	}

	c, err := NewCorrector([]byte(known), 2)
	require.NoError(t, err)
	for _, test := range tests {
		assert.Equal(t, test.expected, c.Correct(test.umi), "'%s' should have corrected to '%s'", test.umi, test.expected)
		// Memoized second lookup agrees.
		assert.Equal(t, test.expected, c.Correct(test.umi))
	}
}

func TestCorrectorDistanceBound(t *testing.T) {
	c, err := NewCorrector([]byte("AAAA\nCCCC"), 1)
	require.NoError(t, err)
	// Unique nearest known UMI, but beyond the bound.
	assert.Equal(t, "AATT", c.Correct("AATT"))
	assert.Equal(t, "AAAA", c.Correct("AAAT"))
}

func TestCorrectorBadWhitelist(t *testing.T) {
	_, err := NewCorrector([]byte(""), 1)
	assert.Error(t, err)

	_, err = NewCorrector([]byte("AAAA\nCCC"), 1)
	assert.Error(t, err)

	_, err = NewCorrector([]byte("AAXA"), 1)
	assert.Error(t, err)
}

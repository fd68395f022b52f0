// ABOUTME: Tests for quote reference canonicalization
// ABOUTME: Covers status URLs on both domains, bare numeric ids, and malformed input

package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalQuoteID_StatusURLs(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"x.com https", "https://x.com/user/status/123456789", "123456789"},
		{"x.com http", "http://x.com/user/status/42", "42"},
		{"twitter.com", "https://twitter.com/someone/status/987", "987"},
		{"www prefix", "https://www.x.com/someone/status/555", "555"},
		{"trailing query", "https://x.com/user/status/123?s=20", "123"},
		{"trailing path", "https://x.com/user/status/123/photo/1", "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalQuoteID(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalQuoteID_NumericID(t *testing.T) {
	got, err := CanonicalQuoteID("123456789")
	require.NoError(t, err)
	assert.Equal(t, "123456789", got)
}

func TestCanonicalQuoteID_Empty(t *testing.T) {
	got, err := CanonicalQuoteID("")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = CanonicalQuoteID("   ")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestCanonicalQuoteID_Idempotent(t *testing.T) {
	// A URL and the id it encodes canonicalize identically
	fromURL, err := CanonicalQuoteID("https://x.com/user/status/12345")
	require.NoError(t, err)

	fromID, err := CanonicalQuoteID(fromURL)
	require.NoError(t, err)
	assert.Equal(t, fromURL, fromID)
}

func TestCanonicalQuoteID_Garbage(t *testing.T) {
	tests := []string{
		"not a reference",
		"12a45",
		"https://example.com/user/status/123",
		"https://x.com/user/123",
		"https://x.com/user/status/abc",
		"http://",
		"x.com/user/status/123", // no scheme, not numeric
		"-123",
	}

	for _, ref := range tests {
		_, err := CanonicalQuoteID(ref)
		assert.ErrorIs(t, err, ErrInvalidReference, "ref %q", ref)
	}
}

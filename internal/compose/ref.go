// ABOUTME: Canonicalization of quote references into numeric post ids
// ABOUTME: Accepts status URLs or bare numeric ids, rejects everything else

package compose

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidReference is returned when a quote reference is non-empty but is
// neither a recognized status URL nor a numeric post id.
var ErrInvalidReference = errors.New("invalid quote reference: not a status URL or numeric post id")

// statusURLRegex matches post URLs on either domain, e.g.
// "https://x.com/user/status/123456789". The first capture group is the id.
var statusURLRegex = regexp.MustCompile(`^https?://(?:www\.)?(?:x\.com|twitter\.com)/[^/]+/status/(\d+)`)

// CanonicalQuoteID extracts the canonical numeric post id from a quote
// reference. The empty string maps to the empty id (no quote). A reference
// starting with "http" must match the status URL shape; anything else must be
// a bare all-digit id. Canonicalization is idempotent: a URL and the id it
// encodes yield the same result.
func CanonicalQuoteID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}

	if strings.HasPrefix(ref, "http") {
		m := statusURLRegex.FindStringSubmatch(ref)
		if m == nil {
			return "", ErrInvalidReference
		}
		return m[1], nil
	}

	if !isDigits(ref) {
		return "", ErrInvalidReference
	}
	return ref, nil
}

// isDigits reports whether s is non-empty and consists only of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ABOUTME: Typed errors for X API rejections
// ABOUTME: Carries the platform's status and detail for verbatim display

package xapi

import "fmt"

// APIError is a rejection from the platform: rejected credentials, rate
// limiting, or a server-side validation failure (e.g. the platform's own
// length counting rejecting text that passed the local advisory check).
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("X API error (%d %s): %s", e.StatusCode, e.Title, e.Detail)
	}
	return fmt.Sprintf("X API error (%d): %s", e.StatusCode, e.Detail)
}

// RateLimited reports whether the platform refused the call for rate reasons.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == 429
}

// Unauthorized reports whether the platform rejected the configured
// credentials.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// Package session implements the login gate and in-memory session tracking.
//
// The application is protected by a single shared password. A successful
// CheckPassword issues a random session token which the web layer stores in a
// cookie; the token is held only in memory and nothing survives a restart.
//
// The session state machine has exactly two states per browser session:
// logged out (initial) and logged in. A failed password attempt leaves the
// state unchanged and reports a uniform authentication error. Logout deletes
// the token, after which requests re-render the password prompt.
//
// Password comparison uses crypto/subtle to avoid timing leaks, and attempts
// are rate limited with golang.org/x/time/rate.
package session

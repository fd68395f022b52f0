// ABOUTME: Password gate for the single shared-password login
// ABOUTME: Constant-time comparison plus rate limiting on attempts

package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// ErrBadPassword is returned for any failed login attempt. The message is
// deliberately uniform: it must not reveal whether the password was close,
// nor whether the attempt was rate limited.
var ErrBadPassword = errors.New("incorrect password")

// Gate holds the configured password and issues session tokens on a match.
// The gate itself is stateless between requests; authenticated state lives in
// the session Store.
type Gate struct {
	password []byte
	sessions *Store
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewGate creates a gate for the given password backed by the given session
// store. Login attempts are limited to one per second with a small burst to
// slow brute force on the shared password.
func NewGate(password string, sessions *Store, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		password: []byte(password),
		sessions: sessions,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 5),
		logger:   logger.With("component", "session"),
	}
}

// CheckPassword compares the input against the configured password in constant
// time. On a match it creates a session and returns its token. Any failure,
// including rate limiting, returns ErrBadPassword.
func (g *Gate) CheckPassword(input string) (string, error) {
	if !g.limiter.Allow() {
		g.logger.Warn("login attempt rate limited")
		return "", ErrBadPassword
	}

	if subtle.ConstantTimeCompare([]byte(input), g.password) != 1 {
		g.logger.Warn("failed login attempt")
		return "", ErrBadPassword
	}

	token, err := generateToken(32)
	if err != nil {
		g.logger.Error("failed to generate session token", "error", err)
		return "", err
	}

	g.sessions.Add(token)
	g.logger.Info("login successful")
	return token, nil
}

// Authenticated reports whether the token names a live session.
func (g *Gate) Authenticated(token string) bool {
	return g.sessions.Valid(token)
}

// Logout ends the session for the given token. Unknown tokens are ignored.
func (g *Gate) Logout(token string) {
	g.sessions.Delete(token)
	g.logger.Info("logged out")
}

// generateToken generates a cryptographically secure random token.
func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

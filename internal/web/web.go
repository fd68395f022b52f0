// ABOUTME: Web UI for the post composer
// ABOUTME: Session-gated routes, CSRF protection, and the submit workflow

package web

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/BrBorghi/XPost/internal/compose"
	"github.com/BrBorghi/XPost/internal/history"
	"github.com/BrBorghi/XPost/internal/session"
	"github.com/BrBorghi/XPost/internal/xapi"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "xpost_session"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "xpost_csrf"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const csrfContextKey contextKey = "csrf_token"

// Config holds web UI configuration.
type Config struct {
	PageTitle        string
	MaxChars         int
	TextareaHeight   int
	TextareaFontSize int
}

// Server handles the composer UI routes and session authentication. Each
// authenticated browser session owns one Composer; drafts live only in memory.
type Server struct {
	config    Config
	gate      *session.Gate
	publisher compose.Publisher
	history   *history.Store // nil when history is disabled
	logger    *slog.Logger

	mu        sync.Mutex
	composers map[string]*compose.Composer
}

// New creates a web server. history may be nil to disable the history page.
func New(cfg Config, gate *session.Gate, publisher compose.Publisher, hist *history.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TextareaHeight == 0 {
		cfg.TextareaHeight = 100
	}
	if cfg.TextareaFontSize == 0 {
		cfg.TextareaFontSize = 16
	}

	return &Server{
		config:    cfg,
		gate:      gate,
		publisher: publisher,
		history:   hist,
		logger:    logger.With("component", "web"),
		composers: make(map[string]*compose.Composer),
	}
}

// RegisterRoutes registers all UI routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Public routes (no auth required)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Protected routes (auth required)
	mux.HandleFunc("GET /{$}", s.requireAuth(s.handleComposerPage))
	mux.HandleFunc("POST /compose", s.requireAuth(s.handleCompose))
	mux.HandleFunc("POST /post", s.requireAuth(s.handleSubmit))
	mux.HandleFunc("POST /logout", s.requireAuth(s.handleLogout))
	mux.HandleFunc("GET /history", s.requireAuth(s.handleHistory))

	s.logger.Info("web routes registered")
}

// requireAuth wraps a handler to require a live session. Unauthenticated
// requests are redirected to the login page. A token that no longer names a
// live session (expired or evicted) has its composer discarded here, so
// session expiry drops the draft exactly like logout.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.sessionToken(r)
		if !s.gate.Authenticated(token) {
			if token != "" {
				s.dropComposer(token)
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// sessionToken returns the session token from the request cookie, or "".
func (s *Server) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// composer returns the Composer owned by the given session, creating it on
// first use. The composer's auth check is bound to the session token, so it
// refuses to publish once the session is logged out.
func (s *Server) composer(token string) *compose.Composer {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.composers[token]
	if !ok {
		c = compose.New(s.config.MaxChars, s.publisher, func() bool {
			return s.gate.Authenticated(token)
		}, s.logger)
		s.composers[token] = c
	}
	return c
}

// dropComposer discards the draft owned by the given session.
func (s *Server) dropComposer(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.composers, token)
}

// handleLoginPage renders the login page.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go straight to the composer
	if s.gate.Authenticated(s.sessionToken(r)) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	_, csrfToken := s.ensureCSRFToken(w, r)
	s.renderLoginPage(w, "", csrfToken)
}

// handleLogin processes the password form submission.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		_, csrfToken := s.ensureCSRFToken(w, r)
		s.renderLoginPage(w, "Invalid form data", csrfToken)
		return
	}

	if !s.validateCSRF(r) {
		_, csrfToken := s.ensureCSRFToken(w, r)
		s.renderLoginPage(w, "Invalid request, please try again", csrfToken)
		return
	}

	token, err := s.gate.CheckPassword(r.FormValue("password"))
	if err != nil {
		// Uniform message regardless of how the attempt failed
		_, csrfToken := s.ensureCSRFToken(w, r)
		s.renderLoginPage(w, "Incorrect password", csrfToken)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout ends the session and discards the in-progress draft. CSRF is
// enforced like on every other POST: a cross-site request must not be able to
// force a logout and destroy the draft.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	if !s.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	token := s.sessionToken(r)
	s.dropComposer(token)
	s.gate.Logout(token)

	// Clear session cookie
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	// Clear CSRF cookie
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleComposerPage renders the composer with the current draft state.
func (s *Server) handleComposerPage(w http.ResponseWriter, r *http.Request) {
	c := s.composer(s.sessionToken(r))
	_, csrfToken := s.ensureCSRFToken(w, r)

	s.renderComposerPage(w, composerView{
		Draft:      c.Draft(),
		Validation: c.Validate(),
		CSRFToken:  csrfToken,
	})
}

// handleCompose updates the draft from the form and re-renders the counter
// fragment. Every keystroke lands here, so derived state (validity, remaining
// count) is recomputed synchronously before the next action.
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	if !s.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	c := s.composer(s.sessionToken(r))
	res := c.UpdateText(r.FormValue("text"))

	var quoteError string
	if err := c.SetQuoteReference(r.FormValue("quote")); err != nil {
		quoteError = "Not a valid post URL or numeric id"
	}

	s.renderCounter(w, res, quoteError)
}

// handleSubmit publishes the draft.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	if !s.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	token := s.sessionToken(r)
	c := s.composer(token)
	_, csrfToken := s.ensureCSRFToken(w, r)

	// The form carries the full draft state; apply it before submitting
	c.UpdateText(r.FormValue("text"))
	if err := c.SetQuoteReference(r.FormValue("quote")); err != nil {
		s.renderComposerPage(w, composerView{
			Draft:      c.Draft(),
			QuoteRef:   r.FormValue("quote"),
			Validation: c.Validate(),
			Error:      "Validation error: the quote must be a post URL or numeric id",
			CSRFToken:  csrfToken,
		})
		return
	}

	// Capture what will be published; a successful submit clears the draft
	submitted := c.Draft()

	conf, err := c.Submit(r.Context())
	if err != nil {
		s.renderComposerPage(w, composerView{
			Draft:      c.Draft(),
			Validation: c.Validate(),
			Error:      submitErrorMessage(err),
			CSRFToken:  csrfToken,
		})
		return
	}

	if s.history != nil {
		if err := s.history.Record(r.Context(), conf.PostID, submitted.Text, submitted.QuoteID); err != nil {
			// History is best effort; the post already went out
			s.logger.Error("failed to record post in history", "error", err)
		}
	}

	s.renderComposerPage(w, composerView{
		Draft:      c.Draft(),
		Validation: c.Validate(),
		Success:    "Posted successfully! ID: " + conf.PostID,
		CSRFToken:  csrfToken,
	})
}

// handleHistory renders recently published posts.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	entries, err := s.history.Recent(r.Context(), 50)
	if err != nil {
		s.logger.Error("failed to load history", "error", err)
		entries = nil // Show empty state on error
	}

	_, csrfToken := s.ensureCSRFToken(w, r)
	s.renderHistoryPage(w, entries, csrfToken)
}

// handleHealthz reports liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// submitErrorMessage maps a submit failure to the message shown inline. All
// failures return to the editable composer with the draft intact; remote
// errors are surfaced verbatim with a retry suggestion.
func submitErrorMessage(err error) string {
	var apiErr *xapi.APIError
	switch {
	case errors.Is(err, compose.ErrEmptyText):
		return "The text cannot be empty!"
	case errors.Is(err, compose.ErrTextTooLong):
		return "The text is over the character limit."
	case errors.Is(err, compose.ErrSubmitInFlight):
		return "A post is already being submitted, hold on."
	case errors.Is(err, compose.ErrNotAuthenticated):
		return "Session expired, please sign in again."
	case errors.As(err, &apiErr):
		return "Error during posting: " + apiErr.Error() + ". You can try again."
	default:
		return "Error during posting: " + err.Error() + ". You can try again."
	}
}

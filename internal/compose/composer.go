// ABOUTME: Post composer owning the draft text and optional quote reference
// ABOUTME: Validates length, guards double submits, and delegates publishing

package compose

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"unicode/utf8"
)

// Validation and precondition errors. All are recovered locally: the draft
// stays editable and the process never crashes on any of them.
var (
	ErrEmptyText        = errors.New("post text is empty")
	ErrTextTooLong      = errors.New("post text exceeds the character limit")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSubmitInFlight   = errors.New("a submit is already in progress")
)

// Publisher is the external post-publishing capability. quoteID is the
// canonical id of the post to quote, or empty for a plain post. It returns
// the id of the newly created post.
type Publisher interface {
	CreatePost(ctx context.Context, text, quoteID string) (string, error)
}

// Draft is the in-progress, unsent post: its text plus the canonical id of an
// optionally quoted post.
type Draft struct {
	Text    string
	QuoteID string
}

// ValidationResult is the derived state recomputed after every text change.
// Remaining may be negative when the text is over the limit.
type ValidationResult struct {
	Remaining int
	Valid     bool
}

// Confirmation reports a successful publish.
type Confirmation struct {
	PostID string
}

// Composer owns a single draft and its validation against the configured
// character limit. The limit is advisory: the platform's own counting rules
// (URLs are weighted) are authoritative, and a remote rejection after a local
// pass surfaces as an ordinary submit failure.
type Composer struct {
	mu            sync.Mutex
	maxChars      int
	publisher     Publisher
	authenticated func() bool
	logger        *slog.Logger

	draft    Draft
	inFlight bool
}

// New creates a Composer with an empty draft. authenticated reports whether
// the owning session is still logged in; Submit consults it before touching
// the publisher.
func New(maxChars int, publisher Publisher, authenticated func() bool, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		maxChars:      maxChars,
		publisher:     publisher,
		authenticated: authenticated,
		logger:        logger.With("component", "compose"),
	}
}

// UpdateText stores the new text into the draft and returns the recomputed
// remaining-character count and validity. Characters are counted as Unicode
// runes, matching the original advisory check.
func (c *Composer) UpdateText(text string) ValidationResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.draft.Text = text
	return c.validateLocked()
}

// SetQuoteReference parses ref and stores the canonical quoted-post id in the
// draft. An empty ref clears the quote. Returns ErrInvalidReference when ref
// is non-empty but is neither a recognized status URL nor a numeric id; the
// stored quote is left unchanged in that case.
func (c *Composer) SetQuoteReference(ref string) error {
	id, err := CanonicalQuoteID(ref)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.QuoteID = id
	return nil
}

// Draft returns a copy of the current draft.
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Validate returns the current derived validation state without mutating the
// draft.
func (c *Composer) Validate() ValidationResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

// validateLocked computes the validation result. Must be called with mu held.
func (c *Composer) validateLocked() ValidationResult {
	n := utf8.RuneCountInString(c.draft.Text)
	return ValidationResult{
		Remaining: c.maxChars - n,
		Valid:     n >= 1 && n <= c.maxChars,
	}
}

// Reset discards the draft, e.g. when the owning session logs out.
func (c *Composer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{}
}

// Submit publishes the draft. Preconditions: the session is authenticated,
// the draft is valid, and no other submit is outstanding. On precondition
// failure the publisher is never invoked. On success the draft is cleared and
// the new post id returned; on publisher failure the draft is left intact so
// the user may edit or retry. There are no automatic retries.
func (c *Composer) Submit(ctx context.Context) (Confirmation, error) {
	c.mu.Lock()

	if c.inFlight {
		c.mu.Unlock()
		return Confirmation{}, ErrSubmitInFlight
	}

	if !c.authenticated() {
		c.mu.Unlock()
		return Confirmation{}, ErrNotAuthenticated
	}

	res := c.validateLocked()
	if !res.Valid {
		c.mu.Unlock()
		if res.Remaining < 0 {
			return Confirmation{}, ErrTextTooLong
		}
		return Confirmation{}, ErrEmptyText
	}

	draft := c.draft
	c.inFlight = true
	c.mu.Unlock()

	id, err := c.publisher.CreatePost(ctx, draft.Text, draft.QuoteID)

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("publish failed", "error", err)
		return Confirmation{}, err
	}

	// Only clear if the draft was not edited while the call was outstanding
	if c.draft == draft {
		c.draft = Draft{}
	}
	c.mu.Unlock()

	c.logger.Info("post published", "post_id", id, "quoted", draft.QuoteID != "")
	return Confirmation{PostID: id}, nil
}

// ABOUTME: Template rendering functions for the composer UI
// ABOUTME: Loads templates from the embedded filesystem and renders them

package web

import (
	"html/template"
	"net/http"

	"github.com/BrBorghi/XPost/internal/compose"
	"github.com/BrBorghi/XPost/internal/history"
)

// composerView carries everything the submit/compose handlers know about the
// current draft into the composer template.
type composerView struct {
	Draft      compose.Draft
	QuoteRef   string // raw form value redisplayed when canonicalization failed
	Validation compose.ValidationResult
	Success    string
	Error      string
	CSRFToken  string
}

// Template data types
type loginData struct {
	Title     string
	Error     string
	CSRFToken string
}

type composerData struct {
	Title            string
	Text             string
	QuoteRef         string
	Remaining        int
	Valid            bool
	MaxChars         int
	TextareaHeight   int
	TextareaFontSize int
	Success          string
	Error            string
	HistoryEnabled   bool
	CSRFToken        string
}

type counterData struct {
	Remaining  int
	Valid      bool
	QuoteError string
}

type historyData struct {
	Title     string
	Entries   []*history.Entry
	CSRFToken string
}

// renderLoginPage renders the login page
func (s *Server) renderLoginPage(w http.ResponseWriter, errorMsg, csrfToken string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/login.html"))

	data := loginData{
		Title:     s.config.PageTitle,
		Error:     errorMsg,
		CSRFToken: csrfToken,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render login page", "error", err)
	}
}

// renderComposerPage renders the main composer page
func (s *Server) renderComposerPage(w http.ResponseWriter, view composerView) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/compose.html"))

	quoteRef := view.QuoteRef
	if quoteRef == "" {
		quoteRef = view.Draft.QuoteID
	}

	data := composerData{
		Title:            s.config.PageTitle,
		Text:             view.Draft.Text,
		QuoteRef:         quoteRef,
		Remaining:        view.Validation.Remaining,
		Valid:            view.Validation.Valid,
		MaxChars:         s.config.MaxChars,
		TextareaHeight:   s.config.TextareaHeight,
		TextareaFontSize: s.config.TextareaFontSize,
		Success:          view.Success,
		Error:            view.Error,
		HistoryEnabled:   s.history != nil,
		CSRFToken:        view.CSRFToken,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render composer page", "error", err)
	}
}

// renderCounter renders the live character-counter fragment (htmx partial)
func (s *Server) renderCounter(w http.ResponseWriter, res compose.ValidationResult, quoteError string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/counter.html"))

	data := counterData{
		Remaining:  res.Remaining,
		Valid:      res.Valid,
		QuoteError: quoteError,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render counter", "error", err)
	}
}

// renderHistoryPage renders the published-post history
func (s *Server) renderHistoryPage(w http.ResponseWriter, entries []*history.Entry, csrfToken string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/history.html"))

	data := historyData{
		Title:     s.config.PageTitle,
		Entries:   entries,
		CSRFToken: csrfToken,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render history page", "error", err)
	}
}

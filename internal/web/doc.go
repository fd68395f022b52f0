// Package web provides the browser interface for composing and publishing posts.
//
// # Overview
//
// The UI is two pages behind a shared-password gate:
//
//   - Login: password field, shown whenever the session is not authenticated
//   - Composer: text area with a live character counter, an optional
//     quote-reference field, a post button, and a logout button
//
// An optional history page lists previously published posts when the history
// store is enabled.
//
// # Session and Draft Ownership
//
// Each authenticated browser session owns one compose.Composer. Drafts live
// only in memory: logout (or session expiry) discards the draft, and nothing
// survives a restart.
//
// # Live Validation
//
// The character counter is an htmx partial: every keystroke posts the form to
// /compose, which stores the new text, re-validates synchronously, and
// returns the counter fragment. The submit handler re-applies the full form
// state before publishing, so validity is always derived from what the user
// last saw.
//
// # CSRF Protection
//
// All form submissions require CSRF tokens using a double-submit cookie:
//
//	<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
//
// htmx requests may carry the token in the X-CSRF-Token header instead.
//
// # Error Display
//
// Validation failures and platform rejections render inline above the form
// with the draft intact; only a successful publish clears it. Remote errors
// are shown verbatim with a retry suggestion. No failure path crashes the
// session.
package web

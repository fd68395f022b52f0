// Package compose implements the post composition workflow.
//
// # Overview
//
// A Composer owns one draft: the post text plus an optional quote reference
// that has been canonicalized to the quoted post's numeric id. Every text
// change recomputes the remaining-character budget against the configured
// limit; the draft is valid when it holds between one character and the limit.
//
// The limit check is advisory. The platform applies its own counting rules
// (certain URL forms count at a fixed weight), so a draft that passes locally
// can still be rejected server side; that rejection is surfaced as a normal
// submit failure.
//
// # Submission
//
// Submit delegates to a Publisher, the external post-creation capability. It
// refuses to touch the publisher when the session is no longer authenticated,
// when the draft is invalid, or when another submit is already outstanding
// (the double-submit guard). Success clears the draft and reports the new
// post id; failure of any kind leaves the draft intact for editing or a
// manual retry. Nothing here retries automatically.
package compose

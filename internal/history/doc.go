// Package history keeps an optional SQLite log of published posts.
//
// Drafts and sessions are memory-only by design; this store records only
// posts the platform already accepted, so the compose workflow never depends
// on it. It is enabled by setting a database path in the [history] config
// section and skipped entirely otherwise.
package history

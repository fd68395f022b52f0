// Package xapi is a minimal client for the X API v2 create-post endpoint.
//
// Requests are signed with OAuth 1.0a user-context credentials (consumer key
// and secret plus access token and secret). The package exposes only what the
// composer consumes: CreatePost, which publishes text and optionally quotes an
// existing post by id, and returns the new post's id. Credential validation
// happens implicitly on that same call.
//
// Platform rejections come back as *APIError with the HTTP status and the
// platform's own detail string, so the UI can surface them verbatim. Network
// failures are wrapped transport errors. The client never retries.
package xapi

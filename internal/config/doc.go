// Package config handles configuration loading for xpost.
//
// # Overview
//
// Configuration is loaded from layered TOML files: a base file (config.toml)
// holding presentation and server settings, and an optional secrets file
// (secrets.toml) that overrides it and carries the password and the X API
// credentials. Keys set in the secrets file win. Environment variables are
// expanded before decoding.
//
// # Configuration Sections
//
// Server:
//
//	[server]
//	http_addr = "localhost:8080"
//
// Composer:
//
//	[compose]
//	page_title = "xpost"
//	max_chars = 280
//	textarea_height = 100
//	textarea_font_size = 16
//
// Authentication:
//
//	[auth]
//	password = "${XPOST_PASSWORD}"
//	session_ttl = "12h"
//
// X API credentials (OAuth 1.0a user context, typically in secrets.toml):
//
//	[credentials]
//	consumer_key = "..."
//	consumer_secret = "..."
//	access_token = "..."
//	access_token_secret = "..."
//
// History (optional; empty path disables it):
//
//	[history]
//	path = "/var/lib/xpost/history.db"
//
// Logging:
//
//	[logging]
//	level = "info"   # debug, info, warn, error
//	format = "text"  # text, json
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("config.toml", "secrets.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The returned Config is constructed once at startup and treated as read-only
// for the lifetime of the process.
package config

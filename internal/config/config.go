// ABOUTME: Configuration loading and parsing for xpost
// ABOUTME: Supports layered TOML files (base + secrets overlay) with env var expansion

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied when the corresponding keys are absent.
const (
	DefaultHTTPAddr   = "localhost:8080"
	DefaultMaxChars   = 280
	DefaultPageTitle  = "xpost"
	DefaultSessionTTL = 12 * time.Hour
)

// Config represents the complete xpost configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Compose     ComposeConfig     `toml:"compose"`
	Auth        AuthConfig        `toml:"auth"`
	Credentials CredentialsConfig `toml:"credentials"`
	History     HistoryConfig     `toml:"history"`
	Logging     LoggingConfig     `toml:"logging"`
}

// ServerConfig holds server address configuration.
type ServerConfig struct {
	HTTPAddr string `toml:"http_addr"`
}

// ComposeConfig holds composer presentation and validation settings.
type ComposeConfig struct {
	PageTitle        string `toml:"page_title"`
	MaxChars         int    `toml:"max_chars"`
	TextareaHeight   int    `toml:"textarea_height"`
	TextareaFontSize int    `toml:"textarea_font_size"`
}

// AuthConfig holds the shared password and session settings.
type AuthConfig struct {
	Password   string        `toml:"password"`
	SessionTTL time.Duration `toml:"-"`

	// Raw string value for TOML unmarshaling
	SessionTTLRaw string `toml:"session_ttl"`
}

// CredentialsConfig holds the four X API credential fields
// (OAuth 1.0a user context).
type CredentialsConfig struct {
	ConsumerKey       string `toml:"consumer_key"`
	ConsumerSecret    string `toml:"consumer_secret"`
	AccessToken       string `toml:"access_token"`
	AccessTokenSecret string `toml:"access_token_secret"`
}

// HistoryConfig holds the published-post log configuration.
// An empty path disables history entirely.
type HistoryConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Load reads the base config file and, if secretsPath names an existing file,
// overlays it on top. Keys set in the secrets file win over the base file,
// mirroring the original config.toml + secrets.toml layering. Environment
// variables in the format ${VAR_NAME} are expanded in both files before
// decoding.
func Load(basePath, secretsPath string) (*Config, error) {
	cfg := defaults()

	if err := decodeFile(basePath, cfg); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if secretsPath != "" {
		if _, err := os.Stat(secretsPath); err == nil {
			if err := decodeFile(secretsPath, cfg); err != nil {
				return nil, fmt.Errorf("loading secrets: %w", err)
			}
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-filled with default values so that a sparse
// config file only needs to name the keys it changes.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: DefaultHTTPAddr,
		},
		Compose: ComposeConfig{
			PageTitle: DefaultPageTitle,
			MaxChars:  DefaultMaxChars,
		},
		Auth: AuthConfig{
			SessionTTL: DefaultSessionTTL,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// decodeFile reads and decodes a single TOML file into cfg.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	if _, err := toml.Decode(expanded, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment
// variable values. If the environment variable is not set, it is replaced with
// an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	if cfg.Auth.SessionTTLRaw != "" {
		ttl, err := time.ParseDuration(cfg.Auth.SessionTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session_ttl %q: %w", cfg.Auth.SessionTTLRaw, err)
		}
		cfg.Auth.SessionTTL = ttl
	}

	return nil
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Compose.MaxChars < 1 {
		return fmt.Errorf("compose.max_chars must be positive, got %d", c.Compose.MaxChars)
	}

	if c.Auth.Password == "" {
		return fmt.Errorf("auth.password is required")
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}

	if c.Credentials.ConsumerKey == "" {
		return fmt.Errorf("credentials.consumer_key is required")
	}
	if c.Credentials.ConsumerSecret == "" {
		return fmt.Errorf("credentials.consumer_secret is required")
	}
	if c.Credentials.AccessToken == "" {
		return fmt.Errorf("credentials.access_token is required")
	}
	if c.Credentials.AccessTokenSecret == "" {
		return fmt.Errorf("credentials.access_token_secret is required")
	}

	return nil
}

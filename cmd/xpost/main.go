// ABOUTME: Entry point for the xpost server
// ABOUTME: Password-gated web form for posting to X

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/BrBorghi/XPost/internal/config"
	"github.com/BrBorghi/XPost/internal/history"
	"github.com/BrBorghi/XPost/internal/session"
	"github.com/BrBorghi/XPost/internal/web"
	"github.com/BrBorghi/XPost/internal/xapi"
)

// version is set via -ldflags at build time.
var version = "dev"

const banner = `
                       _
 __  ___ __   ___  ___| |_
 \ \/ / '_ \ / _ \/ __| __|
  >  <| |_) | (_) \__ \ |_
 /_/\_\ .__/ \___/|___/\__|
      |_|
`

// getConfigPath returns the path to the base config file.
// Priority: XPOST_CONFIG env var > ./config.toml
func getConfigPath() string {
	if envPath := os.Getenv("XPOST_CONFIG"); envPath != "" {
		return envPath
	}
	return "config.toml"
}

// getSecretsPath returns the path to the secrets overlay file.
// Priority: XPOST_SECRETS env var > ./secrets.toml
func getSecretsPath() string {
	if envPath := os.Getenv("XPOST_SECRETS"); envPath != "" {
		return envPath
	}
	return "secrets.toml"
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: xpost <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the web server")
		fmt.Println("  init     Create config and secrets files interactively")
		fmt.Println("  health   Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()
	secretsPath := getSecretsPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath, secretsPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Limit:     %d chars\n", cfg.Compose.MaxChars)
	if cfg.History.Path != "" {
		green.Print("    ▶ ")
		fmt.Printf("History:   %s\n", cfg.History.Path)
	}

	fmt.Println()

	logger.Info("starting xpost",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"max_chars", cfg.Compose.MaxChars,
	)

	// Session store and password gate
	sessions := session.NewStore(cfg.Auth.SessionTTL, 64)
	defer sessions.Close()
	gate := session.NewGate(cfg.Auth.Password, sessions, logger)

	// X API client
	client := xapi.NewClient(xapi.Config{
		Credentials: xapi.Credentials{
			ConsumerKey:       cfg.Credentials.ConsumerKey,
			ConsumerSecret:    cfg.Credentials.ConsumerSecret,
			AccessToken:       cfg.Credentials.AccessToken,
			AccessTokenSecret: cfg.Credentials.AccessTokenSecret,
		},
		Logger: logger,
	})

	// Optional published-post history
	var hist *history.Store
	if cfg.History.Path != "" {
		hist, err = history.New(cfg.History.Path, logger)
		if err != nil {
			return fmt.Errorf("opening history store: %w", err)
		}
		defer hist.Close()
	}

	srv := web.New(web.Config{
		PageTitle:        cfg.Compose.PageTitle,
		MaxChars:         cfg.Compose.MaxChars,
		TextareaHeight:   cfg.Compose.TextareaHeight,
		TextareaFontSize: cfg.Compose.TextareaFontSize,
	}, gate, client, hist, logger)

	return srv.Run(ctx, cfg.Server.HTTPAddr)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath(), getSecretsPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/healthz", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("xpost configuration setup")
	fmt.Println("=========================")
	fmt.Println()

	configFile := prompt(reader, "Config file path", getConfigPath())
	secretsFile := prompt(reader, "Secrets file path", getSecretsPath())

	for _, f := range []string{configFile, secretsFile} {
		if _, err := os.Stat(f); err == nil {
			overwrite := prompt(reader, fmt.Sprintf("%s exists. Overwrite?", f), "no")
			if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}
	}

	// Server configuration
	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", config.DefaultHTTPAddr)

	// Composer
	fmt.Println("\n--- Composer Configuration ---")
	pageTitle := prompt(reader, "Page title", config.DefaultPageTitle)
	maxChars := prompt(reader, "Character limit", fmt.Sprintf("%d", config.DefaultMaxChars))

	// Auth
	fmt.Println("\n--- Access Configuration ---")
	password := prompt(reader, "Access password", "")
	sessionTTL := prompt(reader, "Session TTL", config.DefaultSessionTTL.String())

	// Credentials
	fmt.Println("\n--- X API Credentials (OAuth 1.0a user context) ---")
	consumerKey := prompt(reader, "Consumer key", "")
	consumerSecret := prompt(reader, "Consumer secret", "")
	accessToken := prompt(reader, "Access token", "")
	accessTokenSecret := prompt(reader, "Access token secret", "")

	// History
	fmt.Println("\n--- History Configuration ---")
	historyPath := prompt(reader, "History database path (empty to disable)", "")

	// Logging
	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# xpost configuration\n")
	cfg.WriteString("# Generated by xpost init\n\n")

	cfg.WriteString("[server]\n")
	cfg.WriteString(fmt.Sprintf("http_addr = %q\n", httpAddr))
	cfg.WriteString("\n")

	cfg.WriteString("[compose]\n")
	cfg.WriteString(fmt.Sprintf("page_title = %q\n", pageTitle))
	cfg.WriteString(fmt.Sprintf("max_chars = %s\n", maxChars))
	cfg.WriteString("\n")

	cfg.WriteString("[auth]\n")
	cfg.WriteString(fmt.Sprintf("session_ttl = %q\n", sessionTTL))
	cfg.WriteString("\n")

	if historyPath != "" {
		cfg.WriteString("[history]\n")
		cfg.WriteString(fmt.Sprintf("path = %q\n", historyPath))
		cfg.WriteString("\n")
	}

	cfg.WriteString("[logging]\n")
	cfg.WriteString(fmt.Sprintf("level = %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("format = %q\n", logFormat))

	// The password and credentials live only in the secrets file
	var secrets strings.Builder
	secrets.WriteString("# xpost secrets\n")
	secrets.WriteString("# Generated by xpost init. Do not commit this file.\n\n")

	secrets.WriteString("[auth]\n")
	secrets.WriteString(fmt.Sprintf("password = %q\n", password))
	secrets.WriteString("\n")

	secrets.WriteString("[credentials]\n")
	secrets.WriteString(fmt.Sprintf("consumer_key = %q\n", consumerKey))
	secrets.WriteString(fmt.Sprintf("consumer_secret = %q\n", consumerSecret))
	secrets.WriteString(fmt.Sprintf("access_token = %q\n", accessToken))
	secrets.WriteString(fmt.Sprintf("access_token_secret = %q\n", accessTokenSecret))

	if dir := filepath.Dir(configFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	if err := os.WriteFile(configFile, []byte(cfg.String()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := os.WriteFile(secretsFile, []byte(secrets.String()), 0600); err != nil {
		return fmt.Errorf("writing secrets file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", configFile)
	fmt.Printf("Secrets written to %s\n", secretsFile)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  xpost serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

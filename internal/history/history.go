// ABOUTME: SQLite log of successfully published posts using modernc.org/sqlite
// ABOUTME: Optional feature; records only posts that already left the machine

package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one successfully published post.
type Entry struct {
	ID       string
	PostID   string
	Text     string
	QuoteID  string
	PostedAt time.Time
}

// Store records published posts in SQLite. The draft itself is never
// persisted; only posts the platform already accepted are written here.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a history store at the given path. The schema is created if it
// doesn't exist, and parent directories are created if needed.
func New(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "history")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("history store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL,
			text TEXT NOT NULL,
			quote_id TEXT NOT NULL DEFAULT '',
			posted_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_posts_posted_at
			ON posts(posted_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Record stores a published post. Failures are reported but must not fail the
// publish itself; the caller logs and continues.
func (s *Store) Record(ctx context.Context, postID, text, quoteID string) error {
	entry := Entry{
		ID:       uuid.New().String(),
		PostID:   postID,
		Text:     text,
		QuoteID:  quoteID,
		PostedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, post_id, text, quote_id, posted_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.PostID, entry.Text, entry.QuoteID, entry.PostedAt,
	)
	if err != nil {
		return fmt.Errorf("recording post: %w", err)
	}

	s.logger.Debug("post recorded", "post_id", postID)
	return nil
}

// Recent returns the most recently published posts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, text, quote_id, posted_at FROM posts ORDER BY posted_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PostID, &e.Text, &e.QuoteID, &e.PostedAt); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	return entries, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

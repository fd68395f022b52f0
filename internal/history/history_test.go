// ABOUTME: Tests for the published-post history store
// ABOUTME: Covers recording, recency ordering, limits, and empty results

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := New(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "111", "first post", ""))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.Record(ctx, "222", "quoting post", "12345"))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, "222", entries[0].PostID)
	assert.Equal(t, "12345", entries[0].QuoteID)
	assert.Equal(t, "111", entries[1].PostID)
	assert.Equal(t, "", entries[1].QuoteID)
	assert.False(t, entries[0].PostedAt.IsZero())
}

func TestRecent_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, "id", "text", ""))
	}

	entries, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRecent_Empty(t *testing.T) {
	s := newTestStore(t)

	entries, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecent_NonPositiveLimitUsesDefault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "1", "text", ""))

	entries, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralabs/aura/internal/cache"
)

func openStore(t *testing.T) *cache.Store {
	t.Helper()
	s, err := cache.Open(filepath.Join(t.TempDir(), "extraction.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	err := s.Store(ctx, &cache.Entry{
		Path:     "/docs/report.pdf",
		FileHash: "abcdef0123456789",
		FileType: "PDF",
		Text:     "quarterly numbers",
		Summary:  "PDF document with 2 words.",
	})
	require.NoError(t, err)

	e, hit, err := s.Lookup(ctx, "/docs/report.pdf", "abcdef0123456789")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "quarterly numbers", e.Text)
	assert.Equal(t, "PDF document with 2 words.", e.Summary)
	assert.Equal(t, "PDF", e.FileType)
}

func TestHashMismatchIsMiss(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, &cache.Entry{
		Path: "/docs/a.txt", FileHash: "hash-one", FileType: "TXT",
		Text: "v1", Summary: "TXT document with 1 words.",
	}))

	_, hit, err := s.Lookup(ctx, "/docs/a.txt", "hash-two")
	require.NoError(t, err)
	assert.False(t, hit, "changed content must be a miss, not a stale hit")
}

func TestUpsertKeepsOneRowPerPath(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for i, hash := range []string{"h1", "h2", "h3"} {
		require.NoError(t, s.Store(ctx, &cache.Entry{
			Path: "/docs/rewritten.txt", FileHash: hash, FileType: "TXT",
			Text: "version", Summary: "TXT document with 1 words.",
		}), "store %d", i)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "re-store must overwrite, not duplicate")

	// Only the latest hash is a hit.
	_, hit, err := s.Lookup(ctx, "/docs/rewritten.txt", "h3")
	require.NoError(t, err)
	assert.True(t, hit)

	_, hit, err = s.Lookup(ctx, "/docs/rewritten.txt", "h1")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.txt")
	require.NoError(t, os.WriteFile(path, []byte("identical bytes"), 0644))

	h1, err := cache.HashFile(path)
	require.NoError(t, err)
	assert.Len(t, h1, 16)

	// Rewriting identical bytes yields the identical hash.
	require.NoError(t, os.WriteFile(path, []byte("identical bytes"), 0644))
	h2, err := cache.HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	// Different content yields a different hash.
	require.NoError(t, os.WriteFile(path, []byte("changed bytes"), 0644))
	h3, err := cache.HashFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestPrune(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, s.Store(ctx, &cache.Entry{
		Path: "/old.txt", FileHash: "h", FileType: "TXT",
		Text: "old", Summary: "TXT document with 1 words.", Timestamp: old,
	}))
	require.NoError(t, s.Store(ctx, &cache.Entry{
		Path: "/new.txt", FileHash: "h", FileType: "TXT",
		Text: "new", Summary: "TXT document with 1 words.",
	}))

	removed, err := s.Prune(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

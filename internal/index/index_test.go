package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.sqlite")

	idx, err := Open(path)
	require.NoError(t, err)

	has, err := idx.Has(ctx, "imap.example.com", "Ship Reports/Affinity:42")
	require.NoError(t, err)
	assert.False(t, has)

	e := Entry{
		Store:     "imap.example.com",
		EntryID:   "Ship Reports/Affinity:42",
		MessageID: "abc@example.com",
		Received:  time.Date(2025, time.March, 2, 6, 30, 0, 0, time.UTC),
		Subject:   "USG positions",
		Folder:    "Affinity",
		SavedPath: "reports/Affinity/Emails/a.eml",
	}
	require.NoError(t, idx.Mark(ctx, e))
	require.NoError(t, idx.Mark(ctx, e))

	has, err = idx.Has(ctx, "imap.example.com", "Ship Reports/Affinity:42")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = idx.Has(ctx, "other.example.com", "Ship Reports/Affinity:42")
	require.NoError(t, err)
	assert.False(t, has)

	n, err := idx.Count(ctx, "Affinity")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, idx.Close())

	idx, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	n, err = idx.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "entries survive reopening")
}

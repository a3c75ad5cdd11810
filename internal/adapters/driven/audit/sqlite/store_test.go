package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AppendAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	records := []driven.AuditRecord{
		{ID: "r1", SubjectID: "alice", Operation: "search_documents", Decision: "allowed", Timestamp: base},
		{ID: "r2", SubjectID: "alice", Operation: "get_document_content", Decision: "denied", Timestamp: base.Add(time.Minute)},
		{ID: "r3", SubjectID: "bob", Operation: "search_documents", Decision: "allowed", Timestamp: base.Add(2 * time.Minute)},
	}
	for _, rec := range records {
		require.NoError(t, store.Append(ctx, rec))
	}

	got, err := store.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Most recent first, and bob's record excluded.
	assert.Equal(t, "r2", got[0].ID)
	assert.Equal(t, "denied", got[0].Decision)
	assert.Equal(t, "r1", got[1].ID)
	assert.True(t, got[0].Timestamp.Equal(base.Add(time.Minute)))
}

func TestStore_RecentLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, driven.AuditRecord{
			ID:        string(rune('a' + i)),
			SubjectID: "alice",
			Operation: "search_documents",
			Decision:  "allowed",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := store.Recent(ctx, "alice", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "e", got[0].ID)
}

func TestStore_DuplicateIDRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := driven.AuditRecord{ID: "r1", SubjectID: "alice", Operation: "search_documents", Decision: "allowed", Timestamp: time.Now()}
	require.NoError(t, store.Append(ctx, rec))
	assert.Error(t, store.Append(ctx, rec))
}

func TestStore_ReopenSeesData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, driven.AuditRecord{
		ID: "r1", SubjectID: "alice", Operation: "summarize_content", Decision: "allowed", Timestamp: time.Now(),
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Recent(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "summarize_content", got[0].Operation)
}

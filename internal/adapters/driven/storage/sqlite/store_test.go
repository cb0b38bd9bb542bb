package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// TestStore_SaveAndGetDocument tests the document round trip
func TestStore_SaveAndGetDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := domain.NewDocument("report.txt", ".txt", 1024)
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "report.txt", got.Filename)
	assert.Equal(t, ".txt", got.Format)
	assert.Equal(t, int64(1024), got.Size)
	assert.Equal(t, domain.StatusPending, got.Status)
}

// TestStore_SaveDocument_Update tests upsert semantics
func TestStore_SaveDocument_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := domain.NewDocument("a.txt", ".txt", 10)
	require.NoError(t, store.SaveDocument(ctx, doc))

	doc.Status = domain.StatusCompleted
	doc.ChunkCount = 7
	doc.TextLength = 4200
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, 7, got.ChunkCount)
	assert.Equal(t, 4200, got.TextLength)
}

// TestStore_GetDocument_NotFound tests the missing document error
func TestStore_GetDocument_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestStore_SaveDocument_Invalid tests input validation
func TestStore_SaveDocument_Invalid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveDocument(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveDocument(ctx, &domain.Document{}), domain.ErrInvalidInput)
}

// TestStore_Chunks tests chunk persistence and ordering
func TestStore_Chunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := domain.NewDocument("b.txt", ".txt", 10)
	require.NoError(t, store.SaveDocument(ctx, doc))

	chunks := []domain.Chunk{
		{ID: "c2", DocumentID: doc.ID, Index: 1, Content: "second", CharStart: 80, CharEnd: 180},
		{ID: "c1", DocumentID: doc.ID, Index: 0, Content: "first", CharStart: 0, CharEnd: 100,
			Metadata: map[string]any{"chunk_length": float64(5)}},
	}
	require.NoError(t, store.SaveChunks(ctx, doc.ID, chunks))

	got, err := store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by index regardless of insertion order.
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
	assert.Equal(t, 0, got[0].CharStart)
	assert.Equal(t, 100, got[0].CharEnd)
	assert.Equal(t, float64(5), got[0].Metadata["chunk_length"])
}

// TestStore_SaveChunks_Replaces tests that a re-save drops old chunks
func TestStore_SaveChunks_Replaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := domain.NewDocument("c.txt", ".txt", 10)
	require.NoError(t, store.SaveDocument(ctx, doc))

	first := []domain.Chunk{
		{ID: "c1", DocumentID: doc.ID, Index: 0, Content: "old one"},
		{ID: "c2", DocumentID: doc.ID, Index: 1, Content: "old two"},
	}
	require.NoError(t, store.SaveChunks(ctx, doc.ID, first))

	second := []domain.Chunk{
		{ID: "c3", DocumentID: doc.ID, Index: 0, Content: "new"},
	}
	require.NoError(t, store.SaveChunks(ctx, doc.ID, second))

	got, err := store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Content)
}

// TestStore_DeleteDocument tests cascade deletion of chunks
func TestStore_DeleteDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := domain.NewDocument("d.txt", ".txt", 10)
	require.NoError(t, store.SaveDocument(ctx, doc))
	require.NoError(t, store.SaveChunks(ctx, doc.ID, []domain.Chunk{
		{ID: "c1", DocumentID: doc.ID, Index: 0, Content: "x"},
	}))

	require.NoError(t, store.DeleteDocument(ctx, doc.ID))

	_, err := store.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

// TestStore_DeleteDocument_NotFound tests deleting a missing document
func TestStore_DeleteDocument_NotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.DeleteDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestStore_ListDocuments tests listing order
func TestStore_ListDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		doc := domain.NewDocument(name, ".txt", 1)
		require.NoError(t, store.SaveDocument(ctx, doc))
	}

	docs, err = store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

// TestStore_Reopen tests that data survives a close and reopen
func TestStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)

	doc := domain.NewDocument("persist.txt", ".txt", 64)
	require.NoError(t, store.SaveDocument(ctx, doc))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "persist.txt", got.Filename)
}

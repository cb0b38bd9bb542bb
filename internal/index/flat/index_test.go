package flat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
)

func entry(docID string, chunkIndex int, content string) domain.IndexEntry {
	return domain.IndexEntry{
		DocumentID:   docID,
		DocumentName: docID + ".txt",
		ChunkIndex:   chunkIndex,
		Content:      content,
	}
}

// TestIndex_AddAndSearch tests basic add and ranked search
func TestIndex_AddAndSearch(t *testing.T) {
	idx := New()

	ids, err := idx.Add(
		[][]float32{
			{1, 0, 0},
			{0, 1, 0},
			{0.9, 0.1, 0},
		},
		[]domain.IndexEntry{
			entry("doc-a", 0, "first"),
			entry("doc-b", 0, "second"),
			entry("doc-a", 1, "third"),
		},
	)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, ids)

	hits, err := idx.Search([]float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "first", hits[0].Entry.Content)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "third", hits[1].Entry.Content)
	assert.InDelta(t, 0.9, hits[1].Score, 1e-6)
}

// TestIndex_SearchEmpty tests searching an empty index
func TestIndex_SearchEmpty(t *testing.T) {
	idx := New()
	hits, err := idx.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// TestIndex_SearchFewerThanTopK tests topK larger than the index
func TestIndex_SearchFewerThanTopK(t *testing.T) {
	idx := New()
	_, err := idx.Add([][]float32{{1, 0}}, []domain.IndexEntry{entry("doc-a", 0, "only")})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

// TestIndex_DimensionMismatch tests rejection of wrong-sized vectors
func TestIndex_DimensionMismatch(t *testing.T) {
	idx := New()
	_, err := idx.Add([][]float32{{1, 0, 0}}, []domain.IndexEntry{entry("doc-a", 0, "x")})
	require.NoError(t, err)

	_, err = idx.Add([][]float32{{1, 0}}, []domain.IndexEntry{entry("doc-a", 1, "y")})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = idx.Search([]float32{1, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

// TestIndex_AddMismatchedLengths tests vectors/entries length check
func TestIndex_AddMismatchedLengths(t *testing.T) {
	idx := New()
	_, err := idx.Add([][]float32{{1}}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestIndex_DeleteByDocument tests deletion with id stability
func TestIndex_DeleteByDocument(t *testing.T) {
	idx := New()
	_, err := idx.Add(
		[][]float32{{1, 0}, {0, 1}, {0.5, 0.5}},
		[]domain.IndexEntry{
			entry("doc-a", 0, "a0"),
			entry("doc-b", 0, "b0"),
			entry("doc-a", 1, "a1"),
		},
	)
	require.NoError(t, err)

	removed, err := idx.DeleteByDocument("doc-a")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	stats := idx.Stats()
	assert.Equal(t, 1, stats.TotalVectors)
	assert.Equal(t, 1, stats.DocumentCount)

	// The survivor keeps its original id, and new ids keep counting up.
	entries := idx.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ID)

	ids, err := idx.Add([][]float32{{1, 1}}, []domain.IndexEntry{entry("doc-c", 0, "c0")})
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids)
}

// TestIndex_DeleteUnknownDocument tests a no-op delete
func TestIndex_DeleteUnknownDocument(t *testing.T) {
	idx := New()
	_, err := idx.Add([][]float32{{1}}, []domain.IndexEntry{entry("doc-a", 0, "x")})
	require.NoError(t, err)

	removed, err := idx.DeleteByDocument("doc-missing")
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, 1, idx.Stats().TotalVectors)
}

// TestIndex_Clear tests the full reset
func TestIndex_Clear(t *testing.T) {
	idx := New()
	_, err := idx.Add([][]float32{{1, 0}}, []domain.IndexEntry{entry("doc-a", 0, "x")})
	require.NoError(t, err)

	require.NoError(t, idx.Clear())

	stats := idx.Stats()
	assert.Zero(t, stats.TotalVectors)
	assert.Zero(t, stats.Dimension)

	// A different dimension is accepted after clear, and ids continue.
	ids, err := idx.Add([][]float32{{1, 0, 0}}, []domain.IndexEntry{entry("doc-b", 0, "y")})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}

// TestIndex_Closed tests operations after close
func TestIndex_Closed(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Close())

	_, err := idx.Add([][]float32{{1}}, []domain.IndexEntry{entry("doc-a", 0, "x")})
	assert.ErrorIs(t, err, domain.ErrIndexClosed)
	_, err = idx.Search([]float32{1}, 1)
	assert.ErrorIs(t, err, domain.ErrIndexClosed)
	assert.ErrorIs(t, idx.Clear(), domain.ErrIndexClosed)

	// Close is idempotent.
	assert.NoError(t, idx.Close())
}

// TestIndex_PersistenceRoundTrip tests save and reload
func TestIndex_PersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	idx, err := Open(dir)
	require.NoError(t, err)

	_, err = idx.Add(
		[][]float32{{0.6, 0.8}, {1, 0}},
		[]domain.IndexEntry{
			entry("doc-a", 0, "alpha"),
			entry("doc-b", 0, "beta"),
		},
	)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	stats := reopened.Stats()
	assert.Equal(t, 2, stats.TotalVectors)
	assert.Equal(t, 2, stats.Dimension)
	assert.Equal(t, 2, stats.DocumentCount)

	hits, err := reopened.Search([]float32{0.6, 0.8}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "alpha", hits[0].Entry.Content)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)

	// Ids resume after the persisted counter.
	ids, err := reopened.Add([][]float32{{0, 1}}, []domain.IndexEntry{entry("doc-c", 0, "gamma")})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
}

// TestIndex_OpenMissingSnapshot tests opening a fresh directory
func TestIndex_OpenMissingSnapshot(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "never-written"))
	require.NoError(t, err)
	assert.Zero(t, idx.Stats().TotalVectors)
}

// TestIndex_OpenCorruptBlob tests rejection of a foreign file
func TestIndex_OpenCorruptBlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.bin"), []byte("not an index"), 0o644))

	_, err := Open(dir)
	assert.Error(t, err)
}

// TestIndex_OpenMetadataMismatch tests a metadata sidecar without blob
func TestIndex_OpenMetadataMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(`{"version":1}`), 0o644))

	_, err := Open(dir)
	assert.Error(t, err)
}

// TestIndex_DeletePersists tests that deletion survives a reload
func TestIndex_DeletePersists(t *testing.T) {
	dir := t.TempDir()

	idx, err := Open(dir)
	require.NoError(t, err)
	_, err = idx.Add(
		[][]float32{{1, 0}, {0, 1}},
		[]domain.IndexEntry{entry("doc-a", 0, "a"), entry("doc-b", 0, "b")},
	)
	require.NoError(t, err)

	_, err = idx.DeleteByDocument("doc-a")
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	entries := reopened.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "doc-b", entries[0].DocumentID)
}

// Package flat implements an exact inner-product vector index backed by
// a linear scan. For corpora in the tens of thousands of vectors the
// scan is fast enough and keeps recall exact, which an approximate
// structure would trade away.
package flat

import (
	"fmt"
	"sort"
	"sync"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driven"
	"github.com/quaystone-labs/ragkit/internal/logger"
)

// Index stores dense vectors with per-entry metadata. All mutations and
// searches hold one lock: deletion rebuilds the backing slices, so a
// concurrent add or scan would observe a half-built structure.
type Index struct {
	mu sync.Mutex

	// dir is where snapshots are written. Empty means memory only.
	dir string

	dim     int
	ids     []int64
	vectors [][]float32
	entries map[int64]domain.IndexEntry
	nextID  int64
	closed  bool
}

// Ensure Index implements the VectorIndex port.
var _ driven.VectorIndex = (*Index)(nil)

// New creates an empty in-memory index.
func New() *Index {
	return &Index{
		entries: make(map[int64]domain.IndexEntry),
		nextID:  1,
	}
}

// Open loads the index persisted under dir, or returns an empty index
// when no snapshot exists yet. Mutations write a new snapshot to dir.
func Open(dir string) (*Index, error) {
	idx := New()
	idx.dir = dir
	if err := idx.load(); err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return idx, nil
}

// Add stores vectors with their entries and returns the assigned entry
// ids, in input order. The first add fixes the index dimension.
func (idx *Index) Add(vectors [][]float32, entries []domain.IndexEntry) ([]int64, error) {
	if len(vectors) != len(entries) {
		return nil, fmt.Errorf("add vectors: %w: %d vectors for %d entries", domain.ErrInvalidInput, len(vectors), len(entries))
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return nil, domain.ErrIndexClosed
	}

	if idx.dim == 0 {
		idx.dim = len(vectors[0])
	}
	for _, v := range vectors {
		if len(v) != idx.dim {
			return nil, fmt.Errorf("add vectors: %w: got %d, index is %d", domain.ErrDimensionMismatch, len(v), idx.dim)
		}
	}

	assigned := make([]int64, len(vectors))
	for i, v := range vectors {
		id := idx.nextID
		idx.nextID++

		entry := entries[i]
		entry.ID = id
		idx.ids = append(idx.ids, id)
		idx.vectors = append(idx.vectors, v)
		idx.entries[id] = entry
		assigned[i] = id
	}

	idx.saveLocked()
	return assigned, nil
}

// Search returns the topK entries nearest to query by inner product,
// best first.
func (idx *Index) Search(query []float32, topK int) ([]domain.IndexHit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("search index: %w: top-k %d must be positive", domain.ErrInvalidInput, topK)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return nil, domain.ErrIndexClosed
	}
	if len(idx.ids) == 0 {
		return nil, nil
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("search index: %w: query is %d, index is %d", domain.ErrDimensionMismatch, len(query), idx.dim)
	}

	hits := make([]domain.IndexHit, 0, len(idx.ids))
	for i, id := range idx.ids {
		var score float64
		for j, q := range query {
			score += float64(q) * float64(idx.vectors[i][j])
		}
		hits = append(hits, domain.IndexHit{Entry: idx.entries[id], Score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Entries returns all stored entries in insertion order.
func (idx *Index) Entries() []domain.IndexEntry {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	out := make([]domain.IndexEntry, 0, len(idx.ids))
	for _, id := range idx.ids {
		out = append(out, idx.entries[id])
	}
	return out
}

// DeleteByDocument removes every entry belonging to the document by
// rebuilding the backing slices without them. Returns how many entries
// were removed. Entry ids are never reused.
func (idx *Index) DeleteByDocument(documentID string) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return 0, domain.ErrIndexClosed
	}

	keepIDs := idx.ids[:0:0]
	keepVectors := idx.vectors[:0:0]
	removed := 0
	for i, id := range idx.ids {
		if idx.entries[id].DocumentID == documentID {
			delete(idx.entries, id)
			removed++
			continue
		}
		keepIDs = append(keepIDs, id)
		keepVectors = append(keepVectors, idx.vectors[i])
	}
	idx.ids = keepIDs
	idx.vectors = keepVectors

	if len(idx.ids) == 0 {
		idx.dim = 0
	}
	if removed > 0 {
		idx.saveLocked()
	}
	logger.Debug("removed %d vectors for document %s", removed, documentID)
	return removed, nil
}

// Clear removes all vectors and entries and resets the dimension.
// The id counter is not reset, so ids stay unique across clears.
func (idx *Index) Clear() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return domain.ErrIndexClosed
	}

	idx.ids = nil
	idx.vectors = nil
	idx.entries = make(map[int64]domain.IndexEntry)
	idx.dim = 0

	idx.saveLocked()
	return nil
}

// Stats returns counts describing the index.
func (idx *Index) Stats() domain.IndexStats {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	docs := make(map[string]struct{})
	for _, e := range idx.entries {
		docs[e.DocumentID] = struct{}{}
	}
	return domain.IndexStats{
		TotalVectors:  len(idx.ids),
		Dimension:     idx.dim,
		DocumentCount: len(docs),
	}
}

// Close writes a final snapshot and rejects further operations.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return nil
	}
	idx.closed = true

	if idx.dir == "" {
		return nil
	}
	if err := idx.persist(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	return nil
}

// saveLocked persists a snapshot after a mutation. Persistence failures
// are logged and swallowed: the in-memory index stays authoritative and
// a later mutation or Close retries the write.
func (idx *Index) saveLocked() {
	if idx.dir == "" {
		return
	}
	if err := idx.persist(); err != nil {
		logger.Warn("persist index: %v", err)
	}
}

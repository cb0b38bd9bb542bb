package driven

import "github.com/quaystone-labs/ragkit/internal/core/domain"

// VectorIndex stores dense vectors with per-entry metadata and answers
// exact inner-product similarity searches.
type VectorIndex interface {
	// Add stores vectors with their entries and returns the assigned
	// entry ids, in input order. All vectors in one call must share the
	// index dimension; the first add fixes it.
	Add(vectors [][]float32, entries []domain.IndexEntry) ([]int64, error)

	// Search returns the topK nearest entries to the query by inner
	// product, best first. Fewer than topK results are returned when the
	// index holds fewer vectors.
	Search(query []float32, topK int) ([]domain.IndexHit, error)

	// Entries returns all stored entries in insertion order.
	Entries() []domain.IndexEntry

	// DeleteByDocument removes every entry belonging to the document and
	// returns how many were removed.
	DeleteByDocument(documentID string) (int, error)

	// Clear removes all vectors and entries. The dimension is reset.
	Clear() error

	// Stats returns counts describing the index.
	Stats() domain.IndexStats

	// Close persists the index and releases resources.
	Close() error
}

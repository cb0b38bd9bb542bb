package driven

import "github.com/quaystone-labs/ragkit/internal/core/domain"

// Vectorizer turns text into sparse term-weight vectors over a learned
// vocabulary, plus a fixed-dimension dense projection for the index.
type Vectorizer interface {
	// Fit learns the vocabulary and term statistics from the corpus.
	// A subsequent Fit replaces the previous state entirely.
	Fit(corpus []string) error

	// Transform maps texts to sparse vectors using the fitted state.
	// Returns domain.ErrNotFitted before the first successful Fit.
	Transform(texts []string) ([]domain.SparseVector, error)

	// Project converts a sparse vector to the fixed dense dimension.
	Project(v domain.SparseVector) []float32

	// Fitted reports whether a vocabulary has been learned.
	Fitted() bool

	// VocabularySize returns the number of learned terms.
	VocabularySize() int

	// Reset discards the fitted state.
	Reset()
}

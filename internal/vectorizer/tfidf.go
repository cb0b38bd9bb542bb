// Package vectorizer implements corpus-wide TF-IDF term weighting over
// character n-grams, plus a fixed-dimension dense projection for the
// vector index. Character n-grams keep the scheme language-agnostic: no
// tokeniser or stemmer is needed, which matters for mixed-language
// corpora.
package vectorizer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driven"
	"github.com/quaystone-labs/ragkit/internal/logger"
)

// Defaults for the term-weighting scheme.
const (
	// DefaultMaxFeatures caps the vocabulary size.
	DefaultMaxFeatures = 10000

	// DefaultMinDF is the minimum absolute document frequency for a term.
	DefaultMinDF = 1

	// DefaultMaxDF is the maximum document-frequency ratio for a term.
	DefaultMaxDF = 1.0

	// DefaultDenseDim is the dense projection dimension.
	DefaultDenseDim = 512

	// n-gram sizes extracted from each whitespace-delimited word.
	minGram = 1
	maxGram = 2
)

// TFIDF learns a character n-gram vocabulary from a corpus and produces
// L2-normalised sparse term-weight vectors. Term frequency is
// sub-linear (1 + ln tf) and inverse document frequency is smoothed.
//
// Fit replaces all learned state, so callers must fence fits against
// concurrent transforms that assume a stable vocabulary. The internal
// lock makes individual calls safe, not cross-call snapshots.
type TFIDF struct {
	mu sync.RWMutex

	maxFeatures int
	minDF       int
	maxDF       float64
	denseDim    int

	fitted bool
	vocab  map[string]int
	idf    []float64
}

// Ensure TFIDF implements the Vectorizer port.
var _ driven.Vectorizer = (*TFIDF)(nil)

// Option configures a TFIDF vectorizer.
type Option func(*TFIDF)

// WithMaxFeatures caps the vocabulary size.
func WithMaxFeatures(n int) Option {
	return func(t *TFIDF) { t.maxFeatures = n }
}

// WithMinDF sets the minimum absolute document frequency.
func WithMinDF(n int) Option {
	return func(t *TFIDF) { t.minDF = n }
}

// WithMaxDF sets the maximum document-frequency ratio.
func WithMaxDF(r float64) Option {
	return func(t *TFIDF) { t.maxDF = r }
}

// WithDenseDim sets the dense projection dimension.
func WithDenseDim(d int) Option {
	return func(t *TFIDF) { t.denseDim = d }
}

// New creates a TFIDF vectorizer with the given options.
func New(opts ...Option) *TFIDF {
	t := &TFIDF{
		maxFeatures: DefaultMaxFeatures,
		minDF:       DefaultMinDF,
		maxDF:       DefaultMaxDF,
		denseDim:    DefaultDenseDim,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fit learns the vocabulary and document frequencies from the corpus,
// replacing any previous state.
func (t *TFIDF) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("fit vectorizer: %w: empty corpus", domain.ErrInvalidInput)
	}

	df := make(map[string]int)
	totals := make(map[string]int64)
	for _, text := range corpus {
		counts := countNGrams(text)
		for term, c := range counts {
			df[term]++
			totals[term] += int64(c)
		}
	}

	n := len(corpus)
	maxDocs := int(t.maxDF * float64(n))

	kept := make([]string, 0, len(df))
	for term, d := range df {
		if d < t.minDF || d > maxDocs {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return fmt.Errorf("fit vectorizer: %w: document frequency bounds removed every term", domain.ErrInvalidInput)
	}

	// Cap the vocabulary by corpus-wide term frequency, breaking ties
	// lexicographically so the result is deterministic.
	if t.maxFeatures > 0 && len(kept) > t.maxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if totals[kept[i]] != totals[kept[j]] {
				return totals[kept[i]] > totals[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:t.maxFeatures]
	}

	// Indices follow sorted term order.
	sort.Strings(kept)
	vocab := make(map[string]int, len(kept))
	idf := make([]float64, len(kept))
	for i, term := range kept {
		vocab[term] = i
		idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	t.mu.Lock()
	t.vocab = vocab
	t.idf = idf
	t.fitted = true
	t.mu.Unlock()

	logger.Debug("vectorizer fitted: %d documents, %d terms", n, len(kept))
	return nil
}

// Transform maps texts to L2-normalised sparse vectors over the fitted
// vocabulary. Terms outside the vocabulary are ignored.
func (t *TFIDF) Transform(texts []string) ([]domain.SparseVector, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.fitted {
		return nil, domain.ErrNotFitted
	}

	vectors := make([]domain.SparseVector, len(texts))
	for i, text := range texts {
		weights := make(map[int]float64)
		for term, c := range countNGrams(text) {
			idx, ok := t.vocab[term]
			if !ok {
				continue
			}
			tf := 1 + math.Log(float64(c))
			weights[idx] = tf * t.idf[idx]
		}

		var norm float64
		for _, w := range weights {
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx, w := range weights {
				weights[idx] = w / norm
			}
		}
		vectors[i] = domain.SparseVector{Weights: weights, Dim: len(t.vocab)}
	}
	return vectors, nil
}

// Project flattens a sparse vector into the dense dimension by
// positional truncation or zero-padding, then L2-normalises. The
// projection is lossy; it exists for the opaque-vector index path and
// must not be used where full vocabulary resolution matters.
func (t *TFIDF) Project(v domain.SparseVector) []float32 {
	t.mu.RLock()
	dim := t.denseDim
	t.mu.RUnlock()

	dense := make([]float32, dim)
	var norm float64
	for idx, w := range v.Weights {
		if idx >= dim {
			continue
		}
		dense[idx] = float32(w)
		norm += w * w
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range dense {
			dense[i] *= inv
		}
	}
	return dense
}

// Fitted reports whether a vocabulary has been learned.
func (t *TFIDF) Fitted() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fitted
}

// VocabularySize returns the number of learned terms.
func (t *TFIDF) VocabularySize() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.vocab)
}

// DenseDim returns the dense projection dimension.
func (t *TFIDF) DenseDim() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.denseDim
}

// Reset discards the fitted state.
func (t *TFIDF) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fitted = false
	t.vocab = nil
	t.idf = nil
}

// countNGrams lowercases the text, splits it on whitespace and counts
// character n-grams within each space-padded word. Padding the word
// with spaces lets edge grams mark word boundaries.
func countNGrams(text string) map[string]int {
	counts := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		padded := []rune(" " + word + " ")
		wLen := len(padded)
		for n := minGram; n <= maxGram; n++ {
			offset := 0
			counts[string(padded[offset:min(offset+n, wLen)])]++
			for offset+n < wLen {
				offset++
				counts[string(padded[offset:offset+n])]++
			}
			// A word shorter than n is counted once, as the whole
			// padded word.
			if offset == 0 {
				break
			}
		}
	}
	return counts
}

package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driven"
	"github.com/quaystone-labs/ragkit/internal/logger"
)

// RetrievalService owns the vectorizer and the vector index. It keeps
// them coherent: a refit changes the vocabulary and invalidates every
// sparse vector, so fits are fenced behind a write lock while searches
// and adds share a read lock.
type RetrievalService struct {
	fence      sync.RWMutex
	vectorizer driven.Vectorizer
	index      driven.VectorIndex
}

// NewRetrievalService creates a retrieval service over the given
// vectorizer and index.
func NewRetrievalService(vectorizer driven.Vectorizer, index driven.VectorIndex) *RetrievalService {
	return &RetrievalService{
		vectorizer: vectorizer,
		index:      index,
	}
}

// AddChunks vectorizes the chunks and stores them in the index. The
// first add fits the vectorizer on the batch; later adds reuse the
// vocabulary so stored dense vectors stay comparable. Callers wanting
// full vocabulary resolution over a grown corpus should Refit.
func (s *RetrievalService) AddChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	if !s.vectorizer.Fitted() {
		s.fence.Lock()
		if !s.vectorizer.Fitted() {
			if err := s.vectorizer.Fit(texts); err != nil {
				s.fence.Unlock()
				return fmt.Errorf("fit on first batch: %w", err)
			}
		}
		s.fence.Unlock()
	}

	s.fence.RLock()
	defer s.fence.RUnlock()

	sparse, err := s.vectorizer.Transform(texts)
	if err != nil {
		return fmt.Errorf("vectorize chunks: %w", err)
	}

	vectors := make([][]float32, len(sparse))
	entries := make([]domain.IndexEntry, len(chunks))
	for i, sv := range sparse {
		vectors[i] = s.vectorizer.Project(sv)
		entries[i] = domain.IndexEntry{
			DocumentID:   doc.ID,
			DocumentName: doc.Filename,
			ChunkIndex:   chunks[i].Index,
			Content:      chunks[i].Content,
			Metadata:     chunks[i].Metadata,
		}
	}

	if _, err := s.index.Add(vectors, entries); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}

	logger.Debug("indexed %d chunks for document %s", len(chunks), doc.ID)
	return nil
}

// SearchText ranks stored chunks against the query by cosine
// similarity between sparse vectors, re-deriving the stored chunk
// vectors from their retained text. This is the precise path: it keeps
// full vocabulary resolution instead of the lossy dense projection.
func (s *RetrievalService) SearchText(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("search: %w: top-k %d must be positive", domain.ErrInvalidInput, topK)
	}

	entries := s.index.Entries()
	if len(entries) == 0 {
		return nil, nil
	}

	s.fence.RLock()
	defer s.fence.RUnlock()

	if !s.vectorizer.Fitted() {
		// Degraded path: fit on whatever is stored. Logged, not an
		// error, so a restarted process can serve queries before the
		// next ingest.
		corpus := make([]string, len(entries))
		for i, e := range entries {
			corpus[i] = e.Content
		}
		logger.Warn("vectorizer not fitted, lazy fit on %d stored chunks", len(entries))
		if err := s.vectorizer.Fit(corpus); err != nil {
			return nil, fmt.Errorf("lazy fit: %w", err)
		}
	}

	texts := make([]string, 0, len(entries)+1)
	texts = append(texts, query)
	for _, e := range entries {
		texts = append(texts, e.Content)
	}

	sparse, err := s.vectorizer.Transform(texts)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	queryVec := sparse[0]
	results := make([]domain.SearchResult, 0, len(entries))
	for i, e := range entries {
		score := domain.CosineSimilarity(queryVec, sparse[i+1])
		results = append(results, domain.SearchResult{
			ChunkID:      e.ID,
			DocumentID:   e.DocumentID,
			DocumentName: e.DocumentName,
			ChunkIndex:   e.ChunkIndex,
			Content:      e.Content,
			Score:        score,
			Metadata:     e.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	logger.Debug("text search returned %d results", len(results))
	return results, nil
}

// SearchVector searches the dense index directly. Used when callers
// hand the system an opaque vector rather than text; ranking quality is
// bounded by the lossy projection.
func (s *RetrievalService) SearchVector(query []float32, topK int) ([]domain.SearchResult, error) {
	s.fence.RLock()
	defer s.fence.RUnlock()

	hits, err := s.index.Search(query, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]domain.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = domain.SearchResult{
			ChunkID:      h.Entry.ID,
			DocumentID:   h.Entry.DocumentID,
			DocumentName: h.Entry.DocumentName,
			ChunkIndex:   h.Entry.ChunkIndex,
			Content:      h.Entry.Content,
			Score:        h.Score,
			Metadata:     h.Entry.Metadata,
		}
	}
	return results, nil
}

// Refit rebuilds the vocabulary from all stored chunk texts and
// re-projects every stored vector so the index matches the new
// vocabulary. No search runs concurrently with the swap.
func (s *RetrievalService) Refit(ctx context.Context) error {
	s.fence.Lock()
	defer s.fence.Unlock()

	entries := s.index.Entries()
	if len(entries) == 0 {
		s.vectorizer.Reset()
		return s.index.Clear()
	}

	corpus := make([]string, len(entries))
	for i, e := range entries {
		corpus[i] = e.Content
	}
	if err := s.vectorizer.Fit(corpus); err != nil {
		return fmt.Errorf("refit vectorizer: %w", err)
	}

	sparse, err := s.vectorizer.Transform(corpus)
	if err != nil {
		return fmt.Errorf("re-vectorize corpus: %w", err)
	}

	vectors := make([][]float32, len(sparse))
	fresh := make([]domain.IndexEntry, len(entries))
	for i, sv := range sparse {
		vectors[i] = s.vectorizer.Project(sv)
		fresh[i] = entries[i]
		fresh[i].ID = 0 // reassigned by the index
	}

	if err := s.index.Clear(); err != nil {
		return fmt.Errorf("clear index for refit: %w", err)
	}
	if _, err := s.index.Add(vectors, fresh); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	logger.Info("refit complete: %d chunks, %d terms", len(entries), s.vectorizer.VocabularySize())
	return nil
}

// DeleteDocument removes a document's vectors from the index.
func (s *RetrievalService) DeleteDocument(documentID string) (int, error) {
	s.fence.Lock()
	defer s.fence.Unlock()
	return s.index.DeleteByDocument(documentID)
}

// Clear drops the index and the fitted vocabulary, so the next add
// triggers a fresh fit.
func (s *RetrievalService) Clear() error {
	s.fence.Lock()
	defer s.fence.Unlock()

	if err := s.index.Clear(); err != nil {
		return err
	}
	s.vectorizer.Reset()
	return nil
}

// Stats describes the index and vocabulary.
func (s *RetrievalService) Stats() (domain.IndexStats, int) {
	s.fence.RLock()
	defer s.fence.RUnlock()
	return s.index.Stats(), s.vectorizer.VocabularySize()
}

package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quaystone-labs/ragkit/internal/chunker"
	"github.com/quaystone-labs/ragkit/internal/core/domain"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driven"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driving"
	"github.com/quaystone-labs/ragkit/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.Ingestor = (*IngestionService)(nil)

// DefaultMaxFileSize is the ingest size limit in bytes.
const DefaultMaxFileSize = 50 * 1024 * 1024

// IngestionService walks a file through the document lifecycle:
// pending, processing, then completed or failed. Extraction, chunking
// and indexing all happen inside IngestFile so a returned completed
// document is fully queryable.
type IngestionService struct {
	docStore    driven.DocumentStore
	extractor   driven.TextExtractor
	splitter    *chunker.Splitter
	retrieval   *RetrievalService
	maxFileSize int64

	supported map[string]struct{}
}

// IngestionOption configures an IngestionService.
type IngestionOption func(*IngestionService)

// WithMaxFileSize overrides the ingest size limit.
func WithMaxFileSize(limit int64) IngestionOption {
	return func(s *IngestionService) { s.maxFileSize = limit }
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(
	docStore driven.DocumentStore,
	extractor driven.TextExtractor,
	splitter *chunker.Splitter,
	retrieval *RetrievalService,
	opts ...IngestionOption,
) *IngestionService {
	s := &IngestionService{
		docStore:    docStore,
		extractor:   extractor,
		splitter:    splitter,
		retrieval:   retrieval,
		maxFileSize: DefaultMaxFileSize,
		supported:   make(map[string]struct{}),
	}
	for _, format := range extractor.Formats() {
		s.supported[format] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Supports reports whether the file's extension can be ingested.
func (s *IngestionService) Supports(path string) bool {
	_, ok := s.supported[format(path)]
	return ok
}

// IngestFile extracts, chunks and indexes the file at path. The
// returned document reflects the final state: completed on success,
// failed with an error message when extraction or indexing broke. The
// document row is kept in both cases so failures stay visible.
func (s *IngestionService) IngestFile(ctx context.Context, path string) (*domain.Document, error) {
	logger.Section("Ingest")
	logger.Info("ingesting %s", path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	fileFormat := format(path)
	if _, ok := s.supported[fileFormat]; !ok {
		return nil, fmt.Errorf("ingest %s: %w: %s", path, domain.ErrUnsupportedFormat, fileFormat)
	}
	if info.Size() > s.maxFileSize {
		return nil, fmt.Errorf("ingest %s: %w: %d bytes over limit %d", path, domain.ErrFileTooLarge, info.Size(), s.maxFileSize)
	}

	doc := domain.NewDocument(filepath.Base(path), fileFormat, info.Size())
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	if err := s.transition(ctx, doc, domain.StatusProcessing); err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return doc, s.fail(ctx, doc, fmt.Errorf("extract text: %w", err))
	}

	cleaned := chunker.Clean(text)
	if cleaned == "" {
		return doc, s.fail(ctx, doc, errors.New("document contains no text"))
	}

	chunks := s.splitter.Split(doc.ID, text)
	if len(chunks) == 0 {
		return doc, s.fail(ctx, doc, errors.New("document produced no chunks"))
	}

	if err := s.docStore.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return doc, s.fail(ctx, doc, fmt.Errorf("save chunks: %w", err))
	}

	if err := s.retrieval.AddChunks(ctx, doc, chunks); err != nil {
		return doc, s.fail(ctx, doc, fmt.Errorf("index chunks: %w", err))
	}

	doc.TextLength = len([]rune(cleaned))
	doc.ChunkCount = len(chunks)
	if err := s.transition(ctx, doc, domain.StatusCompleted); err != nil {
		return nil, err
	}

	logger.Info("ingested %s: %d chunks, %d characters", doc.Filename, doc.ChunkCount, doc.TextLength)
	return doc, nil
}

// GetDocument returns a document by id.
func (s *IngestionService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, id)
}

// ListDocuments returns all documents, newest first.
func (s *IngestionService) ListDocuments(ctx context.Context) ([]*domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// DeleteDocument removes a document, its chunks and its vectors.
func (s *IngestionService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.docStore.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	removed, err := s.retrieval.DeleteDocument(id)
	if err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	logger.Info("deleted document %s and %d vectors", id, removed)
	return nil
}

// Reindex rebuilds the vectorizer and index from stored chunks of
// completed documents. Used after deletions have shrunk the corpus or
// when restoring from a metadata-only backup.
func (s *IngestionService) Reindex(ctx context.Context) error {
	logger.Section("Reindex")

	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if err := s.retrieval.Clear(); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}

	indexed := 0
	for _, doc := range docs {
		if doc.Status != domain.StatusCompleted {
			continue
		}
		chunks, err := s.docStore.GetChunks(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("load chunks for %s: %w", doc.ID, err)
		}
		if err := s.retrieval.AddChunks(ctx, doc, chunks); err != nil {
			return fmt.Errorf("index %s: %w", doc.ID, err)
		}
		indexed++
	}

	// One fit over the whole corpus beats the incremental vocabulary
	// from per-document adds.
	if indexed > 0 {
		if err := s.retrieval.Refit(ctx); err != nil {
			return fmt.Errorf("refit: %w", err)
		}
	}

	logger.Info("reindexed %d documents", indexed)
	return nil
}

// transition moves the document to next and persists it.
func (s *IngestionService) transition(ctx context.Context, doc *domain.Document, next domain.DocumentStatus) error {
	if !doc.Status.CanTransitionTo(next) {
		return fmt.Errorf("document %s: illegal transition %s -> %s", doc.ID, doc.Status, next)
	}
	doc.Status = next
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("persist status %s: %w", next, err)
	}
	return nil
}

// fail marks the document failed with the cause and returns the cause.
func (s *IngestionService) fail(ctx context.Context, doc *domain.Document, cause error) error {
	doc.ErrorMessage = cause.Error()
	if err := s.transition(ctx, doc, domain.StatusFailed); err != nil {
		logger.Warn("mark document %s failed: %v", doc.ID, err)
	}
	logger.Warn("ingest %s failed: %v", doc.Filename, cause)
	return cause
}

// format returns the lowercased extension of path, including the dot.
func format(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

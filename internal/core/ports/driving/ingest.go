package driving

import (
	"context"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
)

// Ingestor manages the document lifecycle from file to indexed chunks.
type Ingestor interface {
	// IngestFile extracts, chunks and indexes the file at path. The
	// returned document reflects the final state, completed or failed.
	IngestFile(ctx context.Context, path string) (*domain.Document, error)

	// GetDocument returns a document by id.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]*domain.Document, error)

	// DeleteDocument removes a document, its chunks and its vectors.
	DeleteDocument(ctx context.Context, id string) error

	// Reindex rebuilds the vectorizer and index from stored chunks.
	Reindex(ctx context.Context) error
}

package driven

import (
	"context"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
type DocumentStore interface {
	// SaveDocument inserts or updates a document by id.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument returns a document by id.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents ordered by creation time,
	// newest first.
	ListDocuments(ctx context.Context) ([]*domain.Document, error)

	// SaveChunks stores the chunks of a document, replacing any
	// previously stored chunks for it.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetChunks returns a document's chunks ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	// Returns domain.ErrNotFound if it does not exist.
	DeleteDocument(ctx context.Context, id string) error

	// Close releases the underlying storage.
	Close() error
}

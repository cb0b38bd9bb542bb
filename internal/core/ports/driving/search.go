package driving

import (
	"context"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
)

// Searcher answers similarity queries without generation.
type Searcher interface {
	// Search returns the topK most similar chunks to the query text,
	// best first. topK <= 0 falls back to the configured default.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}

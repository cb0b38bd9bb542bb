package driving

import (
	"context"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
)

// SystemStats summarises the state of the whole pipeline.
type SystemStats struct {
	// DocumentCount is the number of stored documents.
	DocumentCount int

	// CompletedDocuments is how many reached the completed state.
	CompletedDocuments int

	// ChunkCount is the number of indexed chunks.
	ChunkCount int

	// VocabularySize is the number of fitted vocabulary terms.
	VocabularySize int

	// IndexDimension is the dense index dimension.
	IndexDimension int

	// Model is the configured generation model, empty when no provider
	// is wired.
	Model string

	// Config is the active retrieval and generation configuration.
	Config domain.RAGConfig
}

// Orchestrator answers questions over the ingested corpus and exposes
// runtime configuration.
type Orchestrator interface {
	// Ask retrieves context for the question and generates an answer.
	// History carries prior conversation turns, oldest first.
	Ask(ctx context.Context, question string, history []domain.ChatTurn) (*domain.Answer, error)

	// UpdateConfig applies a partial configuration update, validating
	// each field. Valid fields apply even when others are rejected.
	UpdateConfig(updates map[string]any) domain.ConfigUpdateResult

	// Config returns the active configuration.
	Config() domain.RAGConfig

	// Stats returns pipeline-wide statistics.
	Stats(ctx context.Context) (SystemStats, error)

	// CheckHealth verifies the generation provider is reachable.
	CheckHealth(ctx context.Context) error
}

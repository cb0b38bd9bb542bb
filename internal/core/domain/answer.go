package domain

import "time"

// SourceAttribution links part of an answer back to a retrieved chunk.
type SourceAttribution struct {
	// Index is the 1-based citation number used in the prompt.
	Index int

	// DocumentName is the source document's display name.
	DocumentName string

	// ChunkIndex is the chunk's position within the document.
	ChunkIndex int

	// Score is the retrieval similarity for this chunk.
	Score float64

	// Preview is the start of the chunk text, truncated for display.
	Preview string
}

// Answer is the outcome of asking a question against the corpus.
type Answer struct {
	// Text is the generated answer, or the fixed fallback when no
	// context cleared the similarity threshold.
	Text string

	// Sources lists the chunks the answer was grounded on, best first.
	// Empty when ContextUsed is false.
	Sources []SourceAttribution

	// ContextUsed reports whether retrieved context reached the model.
	ContextUsed bool

	// Model is the model that answered, empty for the fallback.
	Model string

	// TokensUsed is the total tokens consumed by the generation call.
	TokensUsed int

	// RetrievalTime is how long retrieval took.
	RetrievalTime time.Duration

	// GenerationTime is how long generation took.
	GenerationTime time.Duration

	// TotalTime is the end-to-end latency.
	TotalTime time.Duration
}

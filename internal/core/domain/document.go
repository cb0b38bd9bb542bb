package domain

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks a document through the ingestion lifecycle.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusPending is the state on creation, before extraction starts.
	StatusPending DocumentStatus = "pending"

	// StatusProcessing means text extraction and chunking are underway.
	StatusProcessing DocumentStatus = "processing"

	// StatusCompleted is terminal; the document's chunks are indexed.
	StatusCompleted DocumentStatus = "completed"

	// StatusFailed is terminal; extraction failed and nothing was indexed.
	StatusFailed DocumentStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no further transitions are allowed.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
// Allowed: pending -> processing -> {completed | failed}.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document represents an ingested file and its processing state.
// Immutable once completed, except for deletion.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original name of the uploaded file.
	Filename string

	// Format is the file extension including the dot (".txt", ".csv", ...).
	Format string

	// Size is the file size in bytes.
	Size int64

	// Status is the current lifecycle state.
	Status DocumentStatus

	// ErrorMessage records why extraction failed. Empty unless Status is failed.
	ErrorMessage string

	// TextLength is the character length of the extracted, cleaned text.
	TextLength int

	// ChunkCount is the number of chunks produced from the text.
	ChunkCount int

	// CreatedAt is when the document was first seen.
	CreatedAt time.Time

	// UpdatedAt is when the document last changed state.
	UpdatedAt time.Time
}

// NewDocument creates a pending document for an incoming file.
func NewDocument(filename, format string, size int64) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        uuid.New().String(),
		Filename:  filename,
		Format:    format,
		Size:      size,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Chunk is a contiguous segment of a document's cleaned text, the unit
// of retrieval. For a given document, chunks are ordered by Index and
// their [CharStart, CharEnd) ranges cover the cleaned text, with
// consecutive ranges overlapping by at most the configured overlap.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent document.
	DocumentID string

	// Index is the 0-based, contiguous position within the document.
	Index int

	// Content is the chunk text.
	Content string

	// CharStart is the rune offset of the chunk in the cleaned text.
	CharStart int

	// CharEnd is the rune offset one past the end of the chunk.
	CharEnd int

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any
}

// IndexEntry is the metadata the vector index keeps per stored vector.
// Entry ids are assigned by the index on add and are unique for the
// lifetime of the index.
type IndexEntry struct {
	// ID is the index-assigned entry identifier.
	ID int64 `json:"id"`

	// DocumentID is the owning document.
	DocumentID string `json:"document_id"`

	// DocumentName is the display name used for source attribution.
	DocumentName string `json:"document_name"`

	// ChunkIndex is the chunk's position within the document.
	ChunkIndex int `json:"chunk_index"`

	// Content is the raw chunk text, retained for precise text search.
	Content string `json:"content"`

	// Metadata contains chunk-level key-value pairs.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IndexHit is a single similarity search result from the vector index.
type IndexHit struct {
	// Entry is the matched index entry.
	Entry IndexEntry

	// Score is the inner-product similarity. Vectors are unit length,
	// so this equals cosine similarity.
	Score float64
}

// IndexStats summarises the state of the vector index.
type IndexStats struct {
	// TotalVectors is the number of stored vectors.
	TotalVectors int

	// Dimension is the dense vector dimension, 0 before the first add.
	Dimension int

	// DocumentCount is the number of distinct documents represented.
	DocumentCount int
}

// SearchResult is a retrieval hit hydrated for callers.
type SearchResult struct {
	// ChunkID identifies the matched entry in the index.
	ChunkID int64

	// DocumentID is the owning document.
	DocumentID string

	// DocumentName is the display name for attribution.
	DocumentName string

	// ChunkIndex is the chunk position within the document.
	ChunkIndex int

	// Content is the full chunk text.
	Content string

	// Score is the cosine similarity to the query.
	Score float64

	// Metadata contains chunk-level key-value pairs.
	Metadata map[string]any
}

// ChatTurn is one prior message of a conversation, used to keep
// follow-up answers coherent.
type ChatTurn struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the message text.
	Content string
}

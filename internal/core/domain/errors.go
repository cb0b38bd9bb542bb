package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity or registration that is
	// already present.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file format with no extractor.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrFileTooLarge indicates a file exceeding the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNotFitted indicates the vectorizer has no vocabulary yet.
	ErrNotFitted = errors.New("vectorizer not fitted")

	// ErrDimensionMismatch indicates a vector whose dimension does not
	// match the index.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrIndexClosed indicates an operation on a closed vector index.
	ErrIndexClosed = errors.New("index closed")

	// ErrGenerationUnavailable indicates the generation client is not
	// configured. Asking questions is disabled without it.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)

package driven

import "context"

// TextExtractor pulls plain text out of a file format.
type TextExtractor interface {
	// Formats returns the file extensions this extractor handles,
	// including the dot.
	Formats() []string

	// Extract reads the file at path and returns its text content.
	Extract(ctx context.Context, path string) (string, error)
}

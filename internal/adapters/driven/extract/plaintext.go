// Package extract provides text extractors for the supported document
// formats and a registry that dispatches on file extension.
package extract

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"
)

// PlainText extracts the contents of plain text files as-is.
type PlainText struct{}

// NewPlainText creates a plain text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// Formats returns the extensions handled by this extractor.
func (e *PlainText) Formats() []string {
	return []string{".txt", ".md"}
}

// Extract reads the whole file. Content that is not valid UTF-8 is
// rejected rather than silently mangled.
func (e *PlainText) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading text file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file %s is not valid UTF-8", path)
	}
	return string(data), nil
}

package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driven"
)

// Registry dispatches extraction to the extractor registered for a
// file's extension. Immutable after construction.
type Registry struct {
	byFormat map[string]driven.TextExtractor
}

// NewRegistry creates a registry over the given extractors. A format
// claimed twice is an error.
func NewRegistry(extractors ...driven.TextExtractor) (*Registry, error) {
	byFormat := make(map[string]driven.TextExtractor)
	for _, ext := range extractors {
		for _, format := range ext.Formats() {
			format = strings.ToLower(format)
			if _, exists := byFormat[format]; exists {
				return nil, fmt.Errorf("create extractor registry: %w: format %s registered twice", domain.ErrAlreadyExists, format)
			}
			byFormat[format] = ext
		}
	}
	return &Registry{byFormat: byFormat}, nil
}

// NewDefaultRegistry creates a registry with all built-in extractors.
func NewDefaultRegistry() *Registry {
	r, err := NewRegistry(NewPlainText(), NewCSV())
	if err != nil {
		// Built-in extractors have disjoint formats.
		panic(err)
	}
	return r
}

// Supports reports whether the file's extension has an extractor.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byFormat[Format(path)]
	return ok
}

// Formats returns all supported extensions, sorted.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// Extract pulls the text out of the file at path.
// Returns domain.ErrUnsupportedFormat for unknown extensions.
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	format := Format(path)
	ext, ok := r.byFormat[format]
	if !ok {
		return "", fmt.Errorf("extract %s: %w: %s", path, domain.ErrUnsupportedFormat, format)
	}
	return ext.Extract(ctx, path)
}

// Format returns the lowercased extension of path, including the dot.
func Format(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

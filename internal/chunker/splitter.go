// Package chunker splits cleaned document text into overlapping,
// sentence-aware chunks, the unit of retrieval. Offsets are measured in
// runes so multi-byte scripts chunk the same as ASCII.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
	"github.com/quaystone-labs/ragkit/internal/logger"
)

// boundaryWindow is how far past the nominal chunk end the splitter
// looks for a sentence boundary.
const boundaryWindow = 200

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// Splitter produces overlapping chunks of a fixed nominal size.
// Immutable after construction, safe for concurrent use.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a splitter. The overlap must satisfy 0 <= overlap <
// chunkSize, otherwise the windowing loop cannot make progress.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("create splitter: %w: chunk size %d must be positive", domain.ErrInvalidInput, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("create splitter: %w: overlap %d must be in [0, %d)", domain.ErrInvalidInput, overlap, chunkSize)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split cleans the text and cuts it into chunks of up to chunkSize
// runes, preferring to end a chunk at a sentence boundary within
// boundaryWindow runes past the nominal end. Consecutive chunks overlap
// by the configured amount. Returns nil for blank input.
func (s *Splitter) Split(documentID, text string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(Clean(text))
	total := len(runes)

	var chunks []domain.Chunk
	index := 0
	start := 0

	for start < total {
		end := start + s.chunkSize

		if end < total {
			if boundary := findSentenceBoundary(runes, end); boundary > start {
				end = boundary
			}
		}

		// end may run past the text when the final window is short;
		// the slice is clamped but the overlap step below intentionally
		// uses the unclamped value.
		sliceEnd := min(end, total)
		content := strings.TrimSpace(string(runes[start:sliceEnd]))
		if content != "" {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: documentID,
				Index:      index,
				Content:    content,
				CharStart:  start,
				CharEnd:    sliceEnd,
				Metadata: map[string]any{
					"chunk_length": len([]rune(content)),
				},
			})
			index++
		}

		start = end - s.overlap
		if start >= total {
			break
		}
	}

	logger.Debug("split document %s into %d chunks", documentID, len(chunks))
	return chunks
}

// ChunkSize returns the nominal chunk size in runes.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the overlap between consecutive chunks in runes.
func (s *Splitter) Overlap() int { return s.overlap }

// Clean normalises raw extracted text: runs of spaces and tabs collapse
// to one space, three or more newlines collapse to a paragraph break,
// and each line is trimmed with blank lines dropped.
func Clean(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// findSentenceBoundary scans forward from position for a sentence
// terminator followed by a space. A terminator followed by a lowercase
// letter is skipped as a likely abbreviation. Returns the rune index
// one past the terminator, or position when no boundary is found.
func findSentenceBoundary(runes []rune, position int) int {
	limit := min(position+boundaryWindow, len(runes))

	for i := position; i < limit; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && runes[i+1] == ' ' {
				if i+2 < len(runes) && unicode.IsLower(runes[i+2]) {
					continue
				}
				return i + 1
			}
		}
	}
	return position
}

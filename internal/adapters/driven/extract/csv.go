package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSV extracts tabular files as one line of text per row, cells joined
// with a separator so the vectorizer sees cell boundaries.
type CSV struct{}

// NewCSV creates a CSV extractor.
func NewCSV() *CSV {
	return &CSV{}
}

// Formats returns the extensions handled by this extractor.
func (e *CSV) Formats() []string {
	return []string{".csv"}
}

// Extract renders each row as "cell | cell | ...". The first row is
// prefixed with "Headers:" and blank cells and rows are dropped.
func (e *CSV) Extract(_ context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var parts []string
	rowNum := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading csv row: %w", err)
		}

		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			line := strings.Join(cells, " | ")
			if rowNum == 0 {
				line = "Headers: " + line
			}
			parts = append(parts, line)
		}
		rowNum++
	}

	return strings.Join(parts, "\n"), nil
}

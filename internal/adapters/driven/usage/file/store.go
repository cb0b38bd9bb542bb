// Package file provides the JSON file-backed usage ledger store.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driven"
)

// Store persists the daily token ledger as a JSON file.
// Callers serialise access; the ledger service holds the lock.
type Store struct {
	path string
}

// Ensure Store implements the UsageStore port.
var _ driven.UsageStore = (*Store)(nil)

// NewStore creates a usage store writing to the given file path.
// If path is empty, defaults to ~/.ragkit/data/token_usage.json.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".ragkit", "data", "token_usage.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating usage directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Load returns the stored record. A missing file yields an empty,
// undated record rather than an error; the ledger stamps the reset
// date from its own clock on first use.
func (s *Store) Load() (domain.UsageRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.UsageRecord{UsageHistory: make(map[string]int64)}, nil
	}
	if err != nil {
		return domain.UsageRecord{}, fmt.Errorf("reading usage file: %w", err)
	}

	var record domain.UsageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.UsageRecord{}, fmt.Errorf("decoding usage file: %w", err)
	}
	if record.UsageHistory == nil {
		record.UsageHistory = make(map[string]int64)
	}
	return record, nil
}

// Save writes the record atomically via rename.
func (s *Store) Save(record domain.UsageRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding usage record: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "token_usage.json.tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp usage file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing usage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing usage file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing usage file: %w", err)
	}
	return nil
}

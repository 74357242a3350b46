package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Hussein-Mazeh/TaskTracker/ledger"
)

// AttemptFile persists the attempt ledger as one JSON file keyed by
// lowercased username. It implements ledger.Backing; each Store call
// replaces the whole mapping atomically.
type AttemptFile struct {
	paths Paths
}

// NewAttemptFile returns an attempt store rooted at the given paths.
func NewAttemptFile(p Paths) *AttemptFile {
	return &AttemptFile{paths: p}
}

// Load reads the whole attempt mapping. A missing file is an empty ledger.
func (f *AttemptFile) Load() (map[string]ledger.Record, error) {
	data, err := os.ReadFile(f.paths.AttemptsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]ledger.Record{}, nil
		}
		return nil, fmt.Errorf("read attempts file: %w", err)
	}

	var all map[string]ledger.Record
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode attempts file: %w", err)
	}
	if all == nil {
		all = map[string]ledger.Record{}
	}
	return all, nil
}

// Store replaces the persisted mapping wholesale.
func (f *AttemptFile) Store(all map[string]ledger.Record) error {
	if err := f.paths.ensureDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode attempts file: %w", err)
	}
	return writeFileAtomic(f.paths.Dir, "security-*.json", f.paths.AttemptsPath(), data)
}

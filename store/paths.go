// Package store persists account and attempt records as whole JSON files.
// Every save is a temp-file write followed by a rename, so a mapping is
// replaced atomically and interleaved writers cannot produce a torn file.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	usersFilename    = "users.json"
	attemptsFilename = "security.json"
	tasksDBFilename  = "tasks.db"
)

// Paths locates the tracker's data files on disk.
type Paths struct {
	Dir string
}

// UsersPath resolves the account store file.
func (p Paths) UsersPath() string { return filepath.Join(p.Dir, usersFilename) }

// AttemptsPath resolves the attempt ledger file.
func (p Paths) AttemptsPath() string { return filepath.Join(p.Dir, attemptsFilename) }

// TasksDBPath resolves the SQLite task database.
func (p Paths) TasksDBPath() string { return filepath.Join(p.Dir, tasksDBFilename) }

func (p Paths) ensureDir() error {
	if p.Dir == "" {
		return errors.New("data directory not specified")
	}
	if err := os.MkdirAll(p.Dir, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}

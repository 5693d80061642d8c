// Package storage implements the load-all/save-all persistence contract for
// the configuration stores. The default backend is a JSON array file per
// store; SQL-backed repositories satisfy the same repository interfaces.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// FileStore persists a slice of records as a single JSON array file.
// LoadAll creates an empty file when none exists; SaveAll replaces the file
// atomically (write to temp, rename). Both are safe for concurrent use.
type FileStore[T any] struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore backed by the given file path.
func NewFileStore[T any](path string) *FileStore[T] {
	return &FileStore[T]{path: path}
}

// Path returns the backing file path.
func (s *FileStore[T]) Path() string {
	return s.path
}

// LoadAll reads every record from the backing file. A missing file is created
// as an empty JSON array and an empty slice is returned.
func (s *FileStore[T]) LoadAll() ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, apperrors.Wrapf(err, "failed to read store file %s", s.path)
		}
		if err := s.writeLocked([]T{}); err != nil {
			return nil, err
		}
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, apperrors.Wrapf(err, "failed to decode store file %s", s.path)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// SaveAll replaces the backing file with the given records.
func (s *FileStore[T]) SaveAll(items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(items)
}

func (s *FileStore[T]) writeLocked(items []T) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return apperrors.Wrapf(err, "failed to create store directory for %s", s.path)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return apperrors.Wrapf(err, "failed to encode store file %s", s.path)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return apperrors.Wrapf(err, "failed to write store file %s", s.path)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return apperrors.Wrapf(err, "failed to replace store file %s", s.path)
	}
	return nil
}

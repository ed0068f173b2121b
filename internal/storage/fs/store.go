// Package fs stores the task document as a JSON file on the local filesystem.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/storage"
)

// Store is a filesystem-based implementation of storage.Local.
type Store struct {
	path string
	mu   sync.RWMutex
}

// NewStore creates a store for the document at path. The parent directory
// is created when missing.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("fs: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Read loads the document file.
func (s *Store) Read(ctx context.Context) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrLocalNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return storage.Decode(data)
}

// Write replaces the document file. The new content goes to a temporary
// file in the same directory which is then renamed over the old one, so a
// crash leaves either the old or the new document, never a partial one.
func (s *Store) Write(ctx context.Context, doc *domain.Document) error {
	data, err := storage.Encode(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

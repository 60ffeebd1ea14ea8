package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/roach88/gauntlet/internal/domain"
)

// Store owns the durable JSON document and its locks. Create one per
// document path and share it by reference; there is no ambient singleton.
type Store struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex // serializes transactions within this process
	lock fileLock   // serializes across cooperating processes
}

// Open creates a store for the document at path, creating the file with
// an empty document if it does not exist yet.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		logger: logger,
		lock:   fileLock{path: path + ".lock"},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		doc := &domain.Document{}
		doc.Normalize()
		if err := writeAtomic(path, doc); err != nil {
			return nil, fmt.Errorf("initialize document: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}

	return s, nil
}

// Path returns the document file path.
func (s *Store) Path() string { return s.path }

// Snapshot returns a full, consistent copy of the document. The copy is
// the caller's to keep; mutating it has no effect on durable state.
func (s *Store) Snapshot(ctx context.Context) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.lock.release()

	return s.load()
}

// Update runs fn against a freshly loaded document under the transaction
// locks. If fn returns nil, the (possibly mutated) document is persisted
// atomically before Update returns. If fn returns an error, nothing is
// written and the error propagates.
func (s *Store) Update(ctx context.Context, fn func(*domain.Document) error) error {
	_, err := UpdateResult(s, ctx, func(doc *domain.Document) (struct{}, error) {
		return struct{}{}, fn(doc)
	})
	return err
}

// UpdateResult is Update for transaction bodies that compute a value.
// The value is returned only if the transaction commits.
func UpdateResult[T any](s *Store, ctx context.Context, fn func(*domain.Document) (T, error)) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.acquire(ctx); err != nil {
		return zero, err
	}
	defer s.lock.release()

	doc, err := s.load()
	if err != nil {
		return zero, err
	}

	out, err := fn(doc)
	if err != nil {
		s.logger.Warn("store update aborted", "path", s.path, "error", err)
		return zero, err
	}

	doc.Normalize()
	if err := writeAtomic(s.path, doc); err != nil {
		return zero, fmt.Errorf("persist document: %w", err)
	}
	return out, nil
}

// load reads and parses the document, then normalizes its schema.
func (s *Store) load() (*domain.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	doc := &domain.Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, &domain.Error{
			Code:    domain.ErrCodeCorruptDocument,
			Message: fmt.Sprintf("document %s failed to parse", s.path),
			Err:     err,
		}
	}
	doc.Normalize()
	return doc, nil
}

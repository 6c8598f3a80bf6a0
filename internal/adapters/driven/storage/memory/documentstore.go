package memory

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]string
	writes    int
	writeErr  map[string]error
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]string),
		writeErr:  make(map[string]error),
	}
}

// FailWrites makes writes to p fail with err. Nil clears the failure.
func (s *DocumentStore) FailWrites(p string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.writeErr, p)
		return
	}
	s.writeErr[p] = err
}

// Writes returns the number of writes that changed a document.
func (s *DocumentStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Read returns the document text.
func (s *DocumentStore) Read(_ context.Context, p string) (string, error) {
	clean, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.documents[clean]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

// Write replaces the document text.
func (s *DocumentStore) Write(_ context.Context, p, text string) error {
	clean, err := cleanPath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeErr[clean]; err != nil {
		return err
	}
	if existing, ok := s.documents[clean]; ok && existing == text {
		return nil
	}
	s.documents[clean] = text
	s.writes++
	return nil
}

// Exists reports whether the document exists.
func (s *DocumentStore) Exists(_ context.Context, p string) (bool, error) {
	clean, err := cleanPath(p)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.documents[clean]
	return ok, nil
}

func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if path.IsAbs(p) {
		return "", domain.ErrOutsideRoot
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", domain.ErrOutsideRoot
	}
	return clean, nil
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// Ensure RawArchive implements the interface.
var _ driven.RawArchive = (*RawArchive)(nil)

// RawArchive is an in-memory implementation of driven.RawArchive.
type RawArchive struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewRawArchive creates a new in-memory archive.
func NewRawArchive() *RawArchive {
	return &RawArchive{objects: make(map[string][]byte)}
}

// Put stores data under key.
func (a *RawArchive) Put(_ context.Context, key string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = append([]byte(nil), data...)
	return nil
}

// Get returns the object stored under key.
func (a *RawArchive) Get(_ context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// List returns the keys under prefix in lexical order.
func (a *RawArchive) List(_ context.Context, prefix string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var keys []string
	for k := range a.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

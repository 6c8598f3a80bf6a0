package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records []domain.Record
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// Add stores a record.
func (s *RecordStore) Add(_ context.Context, record domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// ListByDate returns the records of date, oldest first.
func (s *RecordStore) ListByDate(_ context.Context, date string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Record
	for _, r := range s.records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListRecent returns up to limit records dated on or before date, newest first.
func (s *RecordStore) ListRecent(_ context.Context, date string, limit int) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Record
	for _, r := range s.records {
		if r.Date <= date {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

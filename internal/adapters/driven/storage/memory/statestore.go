package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.StateStore.
type StateStore struct {
	mu      sync.RWMutex
	states  map[string]*domain.DailyState
	history map[string][]domain.RawEntry
	seen    map[string]bool
	saveErr error
}

// NewStateStore creates a new in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{
		states:  make(map[string]*domain.DailyState),
		history: make(map[string][]domain.RawEntry),
		seen:    make(map[string]bool),
	}
}

// SetSaveError makes every subsequent Save fail with err. Nil restores saving.
func (s *StateStore) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Load returns the state for date.
func (s *StateStore) Load(_ context.Context, date string) (*domain.DailyState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[date]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return state.Clone(), nil
}

// Save stores the state if its version matches the stored one.
func (s *StateStore) Save(_ context.Context, state *domain.DailyState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}

	var current int64
	if existing, ok := s.states[state.Date]; ok {
		current = existing.Version
	}
	if current != state.Version {
		return domain.ErrConflict
	}

	for _, source := range sortedSources(state.Raw) {
		entry := state.Raw[source]
		if entry.ID == "" || s.seen[entry.ID] {
			continue
		}
		s.seen[entry.ID] = true
		s.history[state.Date] = append(s.history[state.Date], entry)
	}

	state.Version = current + 1
	s.states[state.Date] = state.Clone()
	return nil
}

// ListRange returns the saved states with from <= date <= to.
func (s *StateStore) ListRange(_ context.Context, from, to string) ([]domain.DailyState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DailyState
	for date, state := range s.states {
		if date >= from && date <= to {
			out = append(out, *state.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// RawHistory returns every raw entry saved for date, oldest first.
func (s *StateStore) RawHistory(_ context.Context, date string) ([]domain.RawEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[date]
	out := make([]domain.RawEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func sortedSources(raw map[domain.SourceKind]domain.RawEntry) []domain.SourceKind {
	kinds := make([]domain.SourceKind, 0, len(raw))
	for k := range raw {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

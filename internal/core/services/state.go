package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/core/ports/driving"
	"github.com/custodia-labs/daylog/internal/logger"
)

// Ensure StateService implements the interface.
var _ driving.StateService = (*StateService)(nil)

// StateService owns the read-modify-write cycle of DailyState records.
// Every write of a date runs under that date's lock.
type StateService struct {
	store    driven.StateStore
	registry driven.NormaliserRegistry
	locker   driven.Locker
	trends   *TrendService
	now      func() time.Time
}

// NewStateService creates a new state service. An empty windows slice
// selects the default trend windows.
func NewStateService(
	store driven.StateStore,
	registry driven.NormaliserRegistry,
	locker driven.Locker,
	windows []int,
) *StateService {
	return &StateService{
		store:    store,
		registry: registry,
		locker:   locker,
		trends:   NewTrendService(store, windows),
		now:      time.Now,
	}
}

// Get returns the state of date; an unsaved date yields an empty state.
func (s *StateService) Get(ctx context.Context, date string) (*domain.DailyState, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}
	return s.Load(ctx, date)
}

// Load returns the stored state of date or an empty one.
func (s *StateService) Load(ctx context.Context, date string) (*domain.DailyState, error) {
	state, err := s.store.Load(ctx, date)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewDailyState(date), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", date, err)
	}
	return state, nil
}

// Update runs fn on the state of date and saves the result, all under
// the state lock of date. Returning an error from fn aborts without a
// write. Save failures are returned as *domain.PersistenceError.
func (s *StateService) Update(
	ctx context.Context,
	flow domain.FlowKind,
	date string,
	fn func(state *domain.DailyState) error,
) (*domain.DailyState, error) {
	unlock, err := s.locker.Lock(ctx, driven.StateLockKey(date))
	if err != nil {
		return nil, fmt.Errorf("lock state %s: %w", date, err)
	}
	defer unlock()

	state, err := s.Load(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	state.UpdatedAt = s.now()

	if err := s.store.Save(ctx, state); err != nil {
		return nil, &domain.PersistenceError{Flow: flow, Date: date, Target: "state", Err: err}
	}
	logger.Debug("Saved state %s (version %d)", date, state.Version)
	return state, nil
}

// Apply merges incoming into the stored state of its date. It reports
// whether the merge replaced a raw entry of an already ingested source
// kind; such corrections rebuild the normalized cache from raw entries.
func (s *StateService) Apply(
	ctx context.Context,
	flow domain.FlowKind,
	incoming *domain.DailyState,
) (*domain.DailyState, bool, error) {
	var corrected bool
	state, err := s.Update(ctx, flow, incoming.Date, func(state *domain.DailyState) error {
		corrected = false
		for kind := range incoming.Raw {
			if _, ok := state.Raw[kind]; ok {
				corrected = true
			}
		}

		merged := Merge(state, incoming)
		if corrected {
			normalized, err := s.normalizeRaw(ctx, merged.Raw)
			if err != nil {
				return err
			}
			merged.Normalized = normalized
			logger.Debug("Correction for %s, rebuilt normalized fields", incoming.Date)
		}
		*state = *merged
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return state, corrected, nil
}

// Rebuild recomputes the normalized cache of date from its raw entries.
func (s *StateService) Rebuild(ctx context.Context, date string) (*domain.DailyState, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}
	return s.Update(ctx, domain.FlowIngest, date, func(state *domain.DailyState) error {
		normalized, err := s.normalizeRaw(ctx, state.Raw)
		if err != nil {
			return err
		}
		state.Normalized = normalized
		return nil
	})
}

// Trends returns the configured trend windows ending at date.
func (s *StateService) Trends(ctx context.Context, date string) ([]domain.TrendWindow, error) {
	return s.trends.Windows(ctx, date)
}

// normalizeRaw replays the raw entries in ingestion order through the
// registry, so later payloads win at leaf granularity.
func (s *StateService) normalizeRaw(
	ctx context.Context,
	raw map[domain.SourceKind]domain.RawEntry,
) (domain.Normalized, error) {
	var out domain.Normalized
	for _, entry := range rawInIngestOrder(raw) {
		if entry.Source.IsText() {
			continue
		}
		n, err := s.registry.Normalise(ctx, entry.Source, entry.Payload)
		if err != nil {
			return domain.Normalized{}, fmt.Errorf("renormalise %s entry %s: %w", entry.Source, entry.ID, err)
		}
		out = MergeNormalized(out, *n)
	}
	out.Derive()
	return out, nil
}

package driven

import (
	"context"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// StateStore persists DailyState records, one per calendar date.
type StateStore interface {
	// Load returns the state for date, or domain.ErrNotFound.
	Load(ctx context.Context, date string) (*domain.DailyState, error)

	// Save commits the state atomically. It compares state.Version with
	// the stored version and returns domain.ErrConflict if another writer
	// committed first. On success state.Version is incremented.
	// Raw entries not yet in the audit history are appended to it.
	Save(ctx context.Context, state *domain.DailyState) error

	// ListRange returns the saved states with from <= date <= to,
	// ordered by date ascending. Missing dates are simply absent.
	ListRange(ctx context.Context, from, to string) ([]domain.DailyState, error)

	// RawHistory returns every raw entry ever ingested for date,
	// oldest first. History is append-only.
	RawHistory(ctx context.Context, date string) ([]domain.RawEntry, error)
}

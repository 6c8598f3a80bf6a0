package driving

import (
	"context"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// StateService exposes the daily state to the boundaries.
type StateService interface {
	// Get returns the state of date; an unsaved date yields an empty state.
	Get(ctx context.Context, date string) (*domain.DailyState, error)

	// Rebuild recomputes the normalized cache from the stored raw entries.
	Rebuild(ctx context.Context, date string) (*domain.DailyState, error)

	// Trends returns the configured trend windows ending at date.
	Trends(ctx context.Context, date string) ([]domain.TrendWindow, error)
}

package driven

import (
	"context"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// RecordStore persists free-form records.
type RecordStore interface {
	// Add stores a record.
	Add(ctx context.Context, record domain.Record) error

	// ListByDate returns the records of date, oldest first.
	ListByDate(ctx context.Context, date string) ([]domain.Record, error)

	// ListRecent returns up to limit records dated on or before date, newest first.
	ListRecent(ctx context.Context, date string, limit int) ([]domain.Record, error)
}

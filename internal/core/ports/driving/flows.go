package driving

import (
	"context"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// FlowService runs the daily flows.
type FlowService interface {
	// Align runs the alignment flow for a date.
	Align(ctx context.Context, in domain.AlignInput) (*domain.FlowResult, error)

	// Morning runs the morning flow and holds its micro-action as pending.
	Morning(ctx context.Context, in domain.MorningInput) (*domain.FlowResult, error)

	// Evening runs the evening flow. An empty journal is a ValidationError.
	Evening(ctx context.Context, in domain.EveningInput) (*domain.FlowResult, error)

	// ResolveAction records an accept/skip/modify decision on the pending action.
	ResolveAction(ctx context.Context, in domain.ActionInput) (*domain.PendingAction, error)

	// AddRecord stores a free-form record and mirrors it into the journal.
	AddRecord(ctx context.Context, in domain.RecordInput) (*domain.Record, error)

	// SetFocus writes the weekly focus into the ISO week document.
	SetFocus(ctx context.Context, in domain.FocusInput) (*domain.FlowResult, error)

	// GetFocus returns the saved focus of the ISO week and the active goals.
	GetFocus(ctx context.Context, date string) (*domain.WeeklyFocus, error)

	// RetryWrite replays the document writes of a result whose write failed.
	RetryWrite(ctx context.Context, result *domain.FlowResult) error
}

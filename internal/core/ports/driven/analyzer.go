package driven

import (
	"context"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// Analyzer is the external analysis function of the flows.
// Calls may be slow and may fail; the caller bounds them with a timeout.
type Analyzer interface {
	// Align produces the value board, pattern and focus.
	Align(ctx context.Context, req domain.AnalysisRequest) (*domain.AlignmentResult, error)

	// Morning produces the micro-action of the day.
	Morning(ctx context.Context, req domain.AnalysisRequest) (*domain.MorningResult, error)

	// Evening produces the evening summary, advice and tomorrow's tasks.
	Evening(ctx context.Context, req domain.AnalysisRequest) (*domain.EveningResult, error)

	// Name identifies the analyzer in logs.
	Name() string
}

package driven

import (
	"context"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// GoalSource loads the value/goal/project graph.
type GoalSource interface {
	// Load returns the current graph. Missing directories yield an empty graph.
	Load(ctx context.Context) (*domain.GoalGraph, error)
}

// Package mcp serves the daily flows and the daily state to AI assistants
// over the Model Context Protocol.
package mcp

import (
	"errors"

	"github.com/custodia-labs/daylog/internal/core/ports/driving"
)

var (
	ErrMissingFlowService  = errors.New("mcp: flow service is required")
	ErrMissingStateService = errors.New("mcp: state service is required")
)

// Ports are the services behind the tools and resources.
type Ports struct {
	Flows driving.FlowService
	State driving.StateService
	// Ingest is optional. Without it the ingest tool is not offered.
	Ingest driving.IngestService
}

// Validate reports every missing required service.
func (p *Ports) Validate() error {
	var errs []error
	if p.Flows == nil {
		errs = append(errs, ErrMissingFlowService)
	}
	if p.State == nil {
		errs = append(errs, ErrMissingStateService)
	}
	return errors.Join(errs...)
}

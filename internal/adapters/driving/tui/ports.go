// Package tui is the interactive terminal front end of daylog.
package tui

import (
	"errors"

	"github.com/custodia-labs/daylog/internal/core/ports/driving"
)

var (
	ErrMissingFlowService  = errors.New("tui: flow service is required")
	ErrMissingStateService = errors.New("tui: state service is required")
	ErrInvalidPorts        = errors.New("tui: no ports given")
)

// Ports are the services the screens call.
type Ports struct {
	Flows driving.FlowService
	State driving.StateService
}

// NewPorts bundles flows and state.
func NewPorts(flows driving.FlowService, state driving.StateService) *Ports {
	return &Ports{Flows: flows, State: state}
}

// Validate reports every missing service.
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

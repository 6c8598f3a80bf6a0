package httpapi

import (
	"github.com/custodia-labs/daylog/internal/core/ports/driving"
)

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Ingest driving.IngestService
	Flows  driving.FlowService
	State  driving.StateService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Flows == nil {
		return ErrMissingFlowService
	}
	if p.State == nil {
		return ErrMissingStateService
	}
	return nil
}

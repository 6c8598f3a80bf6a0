// Package httpapi provides the gin HTTP boundary for ingestion and the
// daily flows.
package httpapi

import "errors"

// ErrMissingIngestService is returned when the ingest service is not provided.
var ErrMissingIngestService = errors.New("httpapi: ingest service is required")

// ErrMissingFlowService is returned when the flow service is not provided.
var ErrMissingFlowService = errors.New("httpapi: flow service is required")

// ErrMissingStateService is returned when the state service is not provided.
var ErrMissingStateService = errors.New("httpapi: state service is required")

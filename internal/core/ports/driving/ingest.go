package driving

import (
	"context"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// IngestService accepts raw telemetry payloads.
type IngestService interface {
	// Ingest validates, normalises and merges a payload into the state of
	// its date. A rejected payload is never partially applied.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)

	// IngestMobile parses a mobile upload body, resolves its date from
	// the reporting window and ingests it.
	IngestMobile(ctx context.Context, body []byte, updateDocument bool) (*domain.IngestResult, error)
}

package driven

import (
	"context"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// Normaliser converts one kind of raw payload into canonical fields.
// Implementations are pure: no I/O, no clock, no randomness.
type Normaliser interface {
	// SourceKind returns the source kind this normaliser handles.
	SourceKind() domain.SourceKind

	// Normalise converts the payload body. Malformed input returns a
	// *domain.SchemaError naming the offending field.
	Normalise(ctx context.Context, body []byte) (*domain.Normalized, error)
}

// DateResolver is an optional interface for normalisers whose payloads
// carry their own calendar date.
type DateResolver interface {
	// ResolveDate returns the date of the payload, or "" if it has none.
	ResolveDate(body []byte) string
}

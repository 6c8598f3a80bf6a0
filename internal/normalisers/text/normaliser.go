// Package text handles the free-text source kinds (check-in and journal).
// They carry no metrics and always normalise to an empty mapping.
package text

import (
	"context"
	"strings"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser validates a text payload and produces no canonical fields.
type Normaliser struct {
	kind domain.SourceKind
}

// New creates a text normaliser for kind, which must be a text kind.
func New(kind domain.SourceKind) *Normaliser {
	return &Normaliser{kind: kind}
}

// SourceKind returns the source kind this normaliser handles.
func (n *Normaliser) SourceKind() domain.SourceKind {
	return n.kind
}

// Normalise checks that body is a text payload and returns an empty mapping.
func (n *Normaliser) Normalise(_ context.Context, body []byte) (*domain.Normalized, error) {
	var p domain.TextPayload
	if err := domain.DecodeJSON(n.kind, body, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Text) == "" {
		return nil, &domain.SchemaError{Source: n.kind, Field: "text", Reason: "is required"}
	}
	return &domain.Normalized{}, nil
}

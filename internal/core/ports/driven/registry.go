package driven

import (
	"context"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// NormaliserRegistry dispatches raw payloads to the normaliser of their source kind.
type NormaliserRegistry interface {
	// Normalise converts a raw payload using the normaliser registered for kind.
	// Returns domain.ErrUnsupportedSource if none is registered.
	Normalise(ctx context.Context, kind domain.SourceKind, body []byte) (*domain.Normalized, error)

	// Register adds a normaliser, replacing any previous one for the same kind.
	Register(normaliser Normaliser)

	// SupportedKinds returns the registered source kinds.
	SupportedKinds() []domain.SourceKind

	// ResolveDate returns the calendar date a payload reports on, when the
	// payload itself carries one. It returns "" otherwise.
	ResolveDate(kind domain.SourceKind, body []byte) string
}

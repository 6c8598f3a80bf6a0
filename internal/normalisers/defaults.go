package normalisers

import (
	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/normalisers/mobile"
	"github.com/custodia-labs/daylog/internal/normalisers/text"
	"github.com/custodia-labs/daylog/internal/normalisers/vision"
	"github.com/custodia-labs/daylog/internal/normalisers/wearable"
)

// RegisterDefaults registers the built-in normaliser of every source kind.
func RegisterDefaults(r *Registry) {
	r.Register(vision.New())
	r.Register(wearable.New())
	r.Register(mobile.New())
	r.Register(text.New(domain.SourceCheckin))
	r.Register(text.New(domain.SourceJournal))
}

// NewDefaultRegistry returns a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

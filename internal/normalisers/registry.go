package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps source kinds to their normalisers.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[domain.SourceKind]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		normalisers: make(map[domain.SourceKind]driven.Normaliser),
	}
}

// Register adds a normaliser, replacing any previous one for the same kind.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers[n.SourceKind()] = n
}

// Normalise dispatches body to the normaliser registered for kind and
// fills the derived fields of the result.
func (r *Registry) Normalise(ctx context.Context, kind domain.SourceKind, body []byte) (*domain.Normalized, error) {
	r.mu.RLock()
	n, ok := r.normalisers[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedSource, kind)
	}

	out, err := n.Normalise(ctx, body)
	if err != nil {
		return nil, err
	}
	out.Derive()
	return out, nil
}

// SupportedKinds returns the registered source kinds in sorted order.
func (r *Registry) SupportedKinds() []domain.SourceKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.SourceKind, 0, len(r.normalisers))
	for k := range r.normalisers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ResolveDate asks the normaliser of kind for the payload date.
func (r *Registry) ResolveDate(kind domain.SourceKind, body []byte) string {
	r.mu.RLock()
	n, ok := r.normalisers[kind]
	r.mu.RUnlock()
	if !ok {
		return ""
	}
	resolver, ok := n.(driven.DateResolver)
	if !ok {
		return ""
	}
	return resolver.ResolveDate(body)
}

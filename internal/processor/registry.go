package processor

import (
	"sync"

	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
)

// Registry maps each provider to the processor that carries its charges
type Registry struct {
	mu         sync.RWMutex
	processors map[types.PaymentProvider]Processor
}

func NewRegistry(processors ...Processor) *Registry {
	r := &Registry{processors: make(map[types.PaymentProvider]Processor, len(processors))}
	for _, p := range processors {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the processor for its provider
func (r *Registry) Register(p Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[p.Provider()] = p
}

// Get returns the processor for a provider
func (r *Registry) Get(provider types.PaymentProvider) (Processor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.processors[provider]
	if !ok {
		return nil, ierr.NewErrorf("no processor registered for provider %s", provider).
			WithHint("Payment provider is not configured").
			WithReportableDetails(map[string]any{
				"provider": provider,
			}).
			Mark(ierr.ErrProcessor)
	}
	return p, nil
}

// NewSimulatedRegistry registers an always-approving simulated processor for every provider
func NewSimulatedRegistry() *Registry {
	r := NewRegistry()
	for _, provider := range types.PaymentProviders {
		r.Register(NewSimulated(provider))
	}
	return r
}

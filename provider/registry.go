package provider

import (
	"fmt"
	"sort"
	"sync"
)

// ProviderRegistry holds the registered payment provider factories.
type ProviderRegistry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewProviderRegistry creates a new empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		factories: make(map[string]ProviderFactory),
	}
}

// Register adds a provider factory to the registry under the given name.
// Registering the same name twice overwrites the earlier factory.
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get creates a new provider instance by name.
func (r *ProviderRegistry) Get(name string) (PaymentProvider, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("payment provider %q is not registered", name)
	}
	return factory(), nil
}

// Names returns the registered provider names in sorted order.
func (r *ProviderRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the process-wide registry that provider packages
// register themselves into from their init functions.
var DefaultRegistry = NewProviderRegistry()

// Register adds a provider factory to the default registry.
func Register(name string, factory ProviderFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get creates a new provider instance from the default registry.
func Get(name string) (PaymentProvider, error) {
	return DefaultRegistry.Get(name)
}

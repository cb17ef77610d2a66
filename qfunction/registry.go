package qfunction

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a fresh QFunction with its fields declared
type Factory func() (*QFunction, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a named kernel factory; gallery packages call this from
// init(). Duplicate names are an error.
func Register(name string, factory Factory) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}
	registry[name] = factory
	return nil
}

// MustRegister is Register for init-time use; it panics on conflict
func MustRegister(name string, factory Factory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

// ByName builds the registered QFunction with the given name
func ByName(name string) (*QFunction, error) {
	registryMu.RLock()
	factory, exists := registry[name]
	registryMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return factory()
}

// RegisteredNames returns the sorted names of all registered kernels
func RegisteredNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

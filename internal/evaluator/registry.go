package evaluator

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Evaluator)
)

// Register adds an evaluator factory to the registry.
// Called by evaluator implementations in their init() functions.
func Register(name string, factory func() Evaluator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// Lookup creates the evaluator registered under name. An empty name selects
// Default.
func Lookup(name string) (Evaluator, error) {
	if name == "" {
		name = Default
	}

	registryMu.RLock()
	factory, ok := registry[strings.ToLower(name)]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown evaluator %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(), nil
}

// Names returns all registered evaluator names (sorted).
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

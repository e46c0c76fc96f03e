package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds a Translator from shared dependencies.
type Constructor func(deps Deps) (Translator, error)

var (
	registryLock sync.RWMutex
	registry     = make(map[string]Constructor)
)

// Register adds a translator constructor under a name. Registering the
// same name twice is a programming error.
func Register(name string, constructor Constructor) {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("provider '%s' is already registered", name))
	}
	registry[name] = constructor
}

// New constructs the named translator.
func New(name string, deps Deps) (Translator, error) {
	registryLock.RLock()
	constructor, exists := registry[name]
	registryLock.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return constructor(deps)
}

// Names returns all registered provider names, sorted.
func Names() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package game

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages engine registration and lookup by kind.
type Registry struct {
	engines map[string]Engine
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// Register adds an engine. Engines must be single-turn or multi-turn, and
// a kind can only be registered once.
func (r *Registry) Register(e Engine) error {
	if e == nil {
		return fmt.Errorf("cannot register nil engine")
	}
	if e.Kind() == "" {
		return fmt.Errorf("engine kind cannot be empty")
	}
	_, single := e.(SingleTurn)
	_, multi := e.(MultiTurn)
	if single == multi {
		return fmt.Errorf("engine %q must be exactly one of single-turn or multi-turn", e.Kind())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.engines[e.Kind()]; ok {
		return fmt.Errorf("engine %q already registered", e.Kind())
	}
	r.engines[e.Kind()] = e
	return nil
}

// MustRegister registers every engine and panics on the first failure.
// It is meant for wiring at startup.
func (r *Registry) MustRegister(engines ...Engine) {
	for _, e := range engines {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
}

// Get retrieves an engine by kind.
func (r *Registry) Get(kind string) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[kind]
	return e, ok
}

// Kinds returns all registered kinds in alphabetical order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.engines))
	for k := range r.engines {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// List returns all engines ordered by kind.
func (r *Registry) List() []Engine {
	kinds := r.Kinds()
	r.mu.RLock()
	defer r.mu.RUnlock()

	engines := make([]Engine, 0, len(kinds))
	for _, k := range kinds {
		engines = append(engines, r.engines[k])
	}
	return engines
}

// Count returns the number of registered engines.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}

// Package registry provides a global bloq-factory registry for bloqflow.
// It maps bloq names to parameterized constructors used by the YAML program
// loader and the CLI.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bloq-labs/bloqflow"
)

// ErrUnknownBloq marks a lookup of a name no factory is registered for.
var ErrUnknownBloq = errors.New("registry: unknown bloq")

// Factory constructs a bloq from loader-supplied parameters.
type Factory func(params map[string]any) (bloqflow.Bloq, error)

// BloqDef describes a registered bloq type.
type BloqDef struct {
	Name        string
	Description string
	Params      []string // accepted parameter names, for diagnostics
	New         Factory
}

var (
	global     *Registry
	globalOnce sync.Once
)

// Global returns the singleton registry instance. On first call it
// initializes the registry and auto-registers all built-in bloq types.
func Global() *Registry {
	globalOnce.Do(func() {
		global = New()
		registerBuiltins(global)
	})
	return global
}

// Registry holds all known bloq factories.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]BloqDef
	order []string // preserves registration order
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{defs: make(map[string]BloqDef)}
}

// Register adds a bloq definition. If a definition with the same name
// already exists it is overwritten.
func (r *Registry) Register(def BloqDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.defs[def.Name] = def
}

// Get returns a bloq definition by name.
func (r *Registry) Get(name string) (BloqDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Has reports whether the name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[name]
	return ok
}

// Build constructs a bloq by name.
func (r *Registry) Build(name string, params map[string]any) (bloqflow.Bloq, error) {
	def, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBloq, name)
	}
	b, err := def.New(params)
	if err != nil {
		return nil, fmt.Errorf("building %q: %w", name, err)
	}
	return b, nil
}

// All returns all registered definitions in registration order.
func (r *Registry) All() []BloqDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]BloqDef, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.defs[name])
	}
	return result
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

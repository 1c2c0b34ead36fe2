package capability

import (
	"fmt"
	"log/slog"
	"sort"
)

// Module is the interface builtin capability packages implement to be
// registered with an engine instance.
type Module interface {
	Register(r *Registry)
}

// Registry holds the named capabilities available to a single application
// instance.
type Registry struct {
	capabilities map[string]Capability
}

// NewRegistry creates and initializes an empty Registry.
func NewRegistry() *Registry {
	return &Registry{capabilities: make(map[string]Capability)}
}

// Register adds a capability under its name. Registering the same name twice
// is a programmer error and panics.
func (r *Registry) Register(c Capability) {
	if _, exists := r.capabilities[c.Name()]; exists {
		panic(fmt.Sprintf("capability with name '%s' already registered", c.Name()))
	}
	slog.Debug("Registering capability.", "name", c.Name())
	r.capabilities[c.Name()] = c
}

// Lookup returns the capability registered under name.
func (r *Registry) Lookup(name string) (Capability, error) {
	c, ok := r.capabilities[name]
	if !ok {
		return nil, fmt.Errorf("no capability registered with name '%s' (have %v)", name, r.Names())
	}
	return c, nil
}

// Names returns the sorted registered capability names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.capabilities))
	for name := range r.capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

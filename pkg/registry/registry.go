package registry

import (
	"fmt"
	"strings"
	"sync"
)

// Source enumerates the qualifying names of all known containers, in
// discovery order.
type Source interface {
	Names() []string
}

// Resolver maps a qualifying name to its descriptor.
type Resolver interface {
	Lookup(qualName string) (Descriptor, error)
}

// Registry is the in-process set of known containers. It implements both
// Source and Resolver.
//
// Example usage:
//
//	reg := registry.New()
//	reg.MustRegister(system.Descriptor())
//	descs, err := registry.Resolve(reg, reg, []string{"apiserve.containers"})
type Registry struct {
	mu    sync.RWMutex
	byQN  map[string]Descriptor
	order []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byQN: make(map[string]Descriptor),
	}
}

// Register adds a container descriptor. Returns an error if the qualifying
// name is empty or already registered, or if the factory is nil.
func (r *Registry) Register(desc Descriptor) error {
	if desc.QualName == "" {
		return fmt.Errorf("cannot register container with empty qualifying name")
	}
	if strings.ContainsAny(desc.QualName, " \t\n") {
		return fmt.Errorf("invalid qualifying name %q", desc.QualName)
	}
	if desc.Factory == nil {
		return fmt.Errorf("cannot register container %q with nil factory", desc.QualName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byQN[desc.QualName]; exists {
		return fmt.Errorf("container %q already registered", desc.QualName)
	}

	r.byQN[desc.QualName] = desc
	r.order = append(r.order, desc.QualName)
	return nil
}

// MustRegister is like Register but panics on error. Meant for process
// start, where a duplicate registration is a programming error.
func (r *Registry) MustRegister(descs ...Descriptor) {
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the descriptor registered under qualName.
func (r *Registry) Lookup(qualName string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.byQN[qualName]
	if !ok {
		return Descriptor{}, fmt.Errorf("container %q is not registered", qualName)
	}
	return desc, nil
}

// Names returns all qualifying names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered containers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

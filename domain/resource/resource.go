// Package resource provides the value types for administrable resources:
// modules, entities, action names, handlers, and the per-module action
// registry. This package has NO dependencies on I/O or external packages.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when an entity (or an attachment of an entity)
// does not exist.
var ErrNotFound = errors.New("not found")

// Actor is whoever is performing an action. Opaque to this layer beyond
// its identity; the authorization gate interprets it.
type Actor interface {
	ActorID() string
}

// Entity is the thing being administered. Opaque to the dispatcher beyond
// its identity.
type Entity interface {
	EntityID() string
}

// Filter narrows a listing. Keys are module-defined.
type Filter map[string]string

// Module describes one administrable entity type: how to locate instances,
// how to list them, and which actions it supports.
//
// A Module and its Registry are built once at application setup and must not
// be mutated afterwards; they are shared across concurrent dispatch calls.
type Module interface {
	// Name is the unique module identifier used in routing and logging.
	Name() string

	// Find fetches a single entity. Returns ErrNotFound when absent.
	Find(ctx context.Context, id string) (Entity, error)

	// ListAll fetches entities matching the filter, in natural order.
	ListAll(ctx context.Context, f Filter) ([]Entity, error)

	// Blank returns a fresh, unsaved entity placeholder. It is the
	// authorization subject for create flows, where no stored entity
	// exists yet.
	Blank() Entity

	// Actions returns the module's action registry.
	Actions() *Registry
}

// Ref is a lightweight (id, label) pair, used by reference pickers.
type Ref struct {
	ID    string `json:"id"`
	Label string `json:"name"`
}

// Set is a read-only collection of modules keyed by name.
type Set struct {
	modules map[string]Module
}

// NewSet builds a module set. Module names must be unique.
func NewSet(modules ...Module) (*Set, error) {
	s := &Set{modules: make(map[string]Module, len(modules))}
	for _, m := range modules {
		if _, exists := s.modules[m.Name()]; exists {
			return nil, fmt.Errorf("duplicate module %q", m.Name())
		}
		s.modules[m.Name()] = m
	}
	return s, nil
}

// Get returns the module with the given name.
func (s *Set) Get(name string) (Module, bool) {
	m, ok := s.modules[name]
	return m, ok
}

// Names returns all module names, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

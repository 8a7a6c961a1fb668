package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

// Record is a generic in-memory entity.
type Record struct {
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	Fields map[string]any `json:"fields,omitempty"`
}

// EntityID returns the record identity.
func (r *Record) EntityID() string { return r.ID }

// Ensure interface compliance.
var _ resource.Entity = (*Record)(nil)

// ModuleOption customizes a module at construction time.
type ModuleOption func(*Module)

// ReadOnly omits the save and delete built-ins, so resolving them
// yields an action-not-found error.
func ReadOnly() ModuleOption {
	return func(m *Module) { m.readOnly = true }
}

// WithDetachHandler wires the built-in detachFile action.
func WithDetachHandler(h resource.Handler) ModuleOption {
	return func(m *Module) { m.detach = h }
}

// Module is an in-memory resource.Module storing generic records. The
// built-in save handler requires a non-empty "label" field and persists
// all submitted fields; delete removes the record.
type Module struct {
	name     string
	idgen    ports.IDGenerator
	readOnly bool
	detach   resource.Handler
	registry *resource.Registry

	mu      sync.RWMutex
	records map[string]*Record
	order   []string
}

// NewModule creates an in-memory module.
func NewModule(name string, idgen ports.IDGenerator, opts ...ModuleOption) *Module {
	m := &Module{
		name:    name,
		idgen:   idgen,
		records: make(map[string]*Record),
	}
	for _, opt := range opts {
		opt(m)
	}

	b := resource.Builtins{DetachFile: m.detach}
	if !m.readOnly {
		b.Save = m.save
		b.Delete = m.delete
	}
	m.registry = resource.NewRegistry(b)
	return m
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Actions returns the module's action registry.
func (m *Module) Actions() *resource.Registry { return m.registry }

// Blank returns an unsaved record placeholder.
func (m *Module) Blank() resource.Entity { return &Record{} }

// Find fetches a record by id.
func (m *Module) Find(ctx context.Context, id string) (resource.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[id]
	if !ok {
		return nil, resource.ErrNotFound
	}
	return r, nil
}

// ListAll returns records in insertion order. Filter values match
// against field values exactly.
func (m *Module) ListAll(ctx context.Context, f resource.Filter) ([]resource.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]resource.Entity, 0, len(m.order))
	for _, id := range m.order {
		r := m.records[id]
		if !matches(r, f) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func matches(r *Record, f resource.Filter) bool {
	for key, want := range f {
		if key == "label" {
			if r.Label != want {
				return false
			}
			continue
		}
		got, ok := r.Fields[key]
		if !ok || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

// save is the built-in save handler: create when e is nil, update
// otherwise. A missing label is a validation failure.
func (m *Module) save(ctx context.Context, e resource.Entity, req *resource.Request) (resource.Result, error) {
	label, _ := req.Fields["label"].(string)
	if label == "" {
		return resource.Result{}, resource.NewValidationError("label", "label is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e == nil {
		r := &Record{ID: m.idgen.New(), Label: label, Fields: copyFields(req.Fields)}
		m.records[r.ID] = r
		m.order = append(m.order, r.ID)
		return resource.Saved(r), nil
	}

	r, ok := m.records[e.EntityID()]
	if !ok {
		return resource.Result{}, resource.ErrNotFound
	}
	r.Label = label
	for k, v := range copyFields(req.Fields) {
		if r.Fields == nil {
			r.Fields = make(map[string]any)
		}
		r.Fields[k] = v
	}
	return resource.Saved(r), nil
}

// delete is the built-in delete handler.
func (m *Module) delete(ctx context.Context, e resource.Entity, req *resource.Request) (resource.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := e.EntityID()
	if _, ok := m.records[id]; !ok {
		return resource.Result{}, resource.ErrNotFound
	}
	delete(m.records, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return resource.Deleted(), nil
}

// Put inserts a record directly (for testing and seeding).
func (m *Module) Put(r *Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[r.ID]; !exists {
		m.order = append(m.order, r.ID)
	}
	m.records[r.ID] = r
}

// Len returns the record count (for testing).
func (m *Module) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "label" {
			continue
		}
		out[k] = v
	}
	return out
}

// Ensure interface compliance.
var _ resource.Module = (*Module)(nil)

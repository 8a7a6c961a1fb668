package resource

import (
	"context"
	"fmt"
)

// Request carries the transport-parsed input of one dispatch call.
// The dispatcher passes it to handlers untouched.
type Request struct {
	// Fields are the submitted field values for save-style actions.
	Fields map[string]any

	// MediaID is the attachment targeted by a detach-file action.
	MediaID string

	// Referrer is the previous location, used by the delete redirect rule.
	Referrer string
}

// Handler executes one action. The entity is nil for create flows.
// A handler returns a Result on success; a *ValidationError for expected,
// user-correctable input problems; ErrNotFound when the action's target
// (for example a media id) no longer exists; any other error is treated
// as an unexpected handler failure. Handlers must be stateless between
// invocations.
type Handler func(ctx context.Context, e Entity, req *Request) (Result, error)

// DuplicateActionError reports a second registration of the same action
// name on one module. Registration happens at setup time, so this is a
// configuration error and should fail fast.
type DuplicateActionError struct {
	Name string
}

func (e *DuplicateActionError) Error() string {
	return fmt.Sprintf("action %q already registered", e.Name)
}

// ActionNotFoundError reports a lookup of an action the module does not
// support.
type ActionNotFoundError struct {
	Name string
}

func (e *ActionNotFoundError) Error() string {
	return fmt.Sprintf("action %q not registered", e.Name)
}

// Builtins holds the handlers for the built-in actions. A nil handler
// leaves that action unregistered; a read-only module omits Save and
// Delete and resolving them yields ActionNotFoundError rather than a
// silent no-op.
type Builtins struct {
	Save       Handler
	Delete     Handler
	DetachFile Handler
}

// Registry maps action names to handlers for exactly one module.
// It is populated at setup and read-only afterwards.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds a registry pre-populated with the given built-in
// handlers.
func NewRegistry(b Builtins) *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	if b.Save != nil {
		r.handlers[Save().String()] = b.Save
	}
	if b.Delete != nil {
		r.handlers[Delete().String()] = b.Delete
	}
	if b.DetachFile != nil {
		r.handlers[DetachFile().String()] = b.DetachFile
	}
	return r
}

// Register adds a handler for a custom action. Returns
// DuplicateActionError if the name is already taken.
func (r *Registry) Register(name ActionName, h Handler) error {
	key := name.String()
	if _, exists := r.handlers[key]; exists {
		return &DuplicateActionError{Name: key}
	}
	r.handlers[key] = h
	return nil
}

// MustRegister registers a custom action and panics on conflict.
// Intended for setup code where a duplicate is a programming error.
func (r *Registry) MustRegister(name ActionName, h Handler) {
	if err := r.Register(name, h); err != nil {
		panic(err)
	}
}

// Resolve returns the handler for an action name, or
// ActionNotFoundError when the module does not support it.
func (r *Registry) Resolve(name ActionName) (Handler, error) {
	h, ok := r.handlers[name.String()]
	if !ok {
		return nil, &ActionNotFoundError{Name: name.String()}
	}
	return h, nil
}

// Actions returns the registered action names, in wire form.
func (r *Registry) Actions() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

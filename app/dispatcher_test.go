package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/scaffold/adapters/clock"
	"github.com/artpar/scaffold/adapters/idgen"
	"github.com/artpar/scaffold/adapters/memory"
	"github.com/artpar/scaffold/domain/outcome"
	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

type stubEntity struct{ id string }

func (e stubEntity) EntityID() string { return e.id }

// stubModule allows tests to control entity resolution and handlers
// precisely, including injected lookup failures.
type stubModule struct {
	name     string
	entities map[string]resource.Entity
	findErr  error
	registry *resource.Registry
}

func (m *stubModule) Name() string { return m.name }

func (m *stubModule) Find(ctx context.Context, id string) (resource.Entity, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	e, ok := m.entities[id]
	if !ok {
		return nil, resource.ErrNotFound
	}
	return e, nil
}

func (m *stubModule) ListAll(ctx context.Context, f resource.Filter) ([]resource.Entity, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	out := make([]resource.Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	return out, nil
}

func (m *stubModule) Blank() resource.Entity      { return stubEntity{} }
func (m *stubModule) Actions() *resource.Registry { return m.registry }

// stubTargets builds predictable URLs.
type stubTargets struct{}

func (stubTargets) View(module, id string) string { return "/modules/" + module + "/" + id }
func (stubTargets) Listing(module string) string  { return "/modules/" + module }

// keyCatalog echoes the message key, so assertions can name keys
// instead of English text.
type keyCatalog struct{}

func (keyCatalog) Lookup(key string) string { return key }

func newTestDispatcher(gate ports.Gate) *Dispatcher {
	return NewDispatcher(DispatcherDeps{
		Gate:     gate,
		Targets:  stubTargets{},
		Messages: keyCatalog{},
		Logger:   zerolog.Nop(),
	})
}

func savedHandler(e resource.Entity) resource.Handler {
	return func(ctx context.Context, _ resource.Entity, _ *resource.Request) (resource.Result, error) {
		return resource.Saved(e), nil
	}
}

func TestDispatch_CreateRedirectsToView(t *testing.T) {
	gate := memory.AllowAll()
	mod := &stubModule{
		name:     "post",
		registry: resource.NewRegistry(resource.Builtins{Save: savedHandler(stubEntity{id: "7"})}),
	}
	d := newTestDispatcher(gate)

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.Save(), "", nil)

	if o.Kind() != outcome.KindRedirect {
		t.Fatalf("Kind() = %v, want redirect (failure: %s)", o.Label(), o.FailureMessage())
	}
	if o.Target() != "/modules/post/7" {
		t.Errorf("Target() = %q, want /modules/post/7", o.Target())
	}
	if len(o.Messages()) != 1 || o.Messages()[0].Text != "messages.create_success" {
		t.Errorf("Messages() = %v, want create_success key", o.Messages())
	}

	calls := gate.Calls()
	if len(calls) != 1 {
		t.Fatalf("gate consulted %d times, want 1", len(calls))
	}
	if calls[0].Ability != "create" {
		t.Errorf("ability = %q, want create", calls[0].Ability)
	}
	if calls[0].Subject != "" {
		t.Errorf("subject = %q, want blank placeholder", calls[0].Subject)
	}
}

func TestDispatch_UpdateUsesUpdateAbility(t *testing.T) {
	gate := memory.AllowAll()
	mod := &stubModule{
		name:     "post",
		entities: map[string]resource.Entity{"7": stubEntity{id: "7"}},
		registry: resource.NewRegistry(resource.Builtins{Save: savedHandler(stubEntity{id: "7"})}),
	}
	d := newTestDispatcher(gate)

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.Save(), "7", nil)

	if o.Kind() != outcome.KindRedirect {
		t.Fatalf("Kind() = %v, want redirect", o.Label())
	}
	if len(o.Messages()) != 1 || o.Messages()[0].Text != "messages.update_success" {
		t.Errorf("Messages() = %v, want update_success key", o.Messages())
	}

	calls := gate.Calls()
	if len(calls) != 1 || calls[0].Ability != "update" || calls[0].Subject != "7" {
		t.Errorf("gate calls = %v, want one update check against entity 7", calls)
	}
}

func TestDispatch_MissingEntitySkipsGateAndHandler(t *testing.T) {
	gate := memory.AllowAll()
	invoked := 0
	mod := &stubModule{
		name: "post",
		registry: resource.NewRegistry(resource.Builtins{
			Save: func(ctx context.Context, e resource.Entity, req *resource.Request) (resource.Result, error) {
				invoked++
				return resource.Saved(stubEntity{id: "x"}), nil
			},
		}),
	}
	d := newTestDispatcher(gate)

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.Save(), "missing", nil)

	if o.Kind() != outcome.KindNotFound {
		t.Fatalf("Kind() = %v, want not_found", o.Label())
	}
	if len(gate.Calls()) != 0 {
		t.Errorf("gate consulted for a missing entity: %v", gate.Calls())
	}
	if invoked != 0 {
		t.Errorf("handler invoked %d times for a missing entity", invoked)
	}
}

func TestDispatch_UnsupportedActionSkipsGate(t *testing.T) {
	gate := memory.AllowAll()
	mod := &stubModule{
		name:     "log",
		entities: map[string]resource.Entity{"1": stubEntity{id: "1"}},
		registry: resource.NewRegistry(resource.Builtins{}),
	}
	d := newTestDispatcher(gate)

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.Delete(), "1", nil)

	if o.Kind() != outcome.KindFailure || o.FailureKind() != outcome.FailureActionNotSupported {
		t.Fatalf("outcome = %v/%v, want action_not_supported failure", o.Label(), o.FailureKind())
	}
	if len(gate.Calls()) != 0 {
		t.Errorf("gate consulted for an unsupported action: %v", gate.Calls())
	}
}

func TestDispatch_MissingEntityPrecedesUnsupportedAction(t *testing.T) {
	mod := &stubModule{name: "log", registry: resource.NewRegistry(resource.Builtins{})}
	d := newTestDispatcher(memory.AllowAll())

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.Delete(), "missing", nil)

	if o.Kind() != outcome.KindNotFound {
		t.Errorf("Kind() = %v, want not_found before action_not_supported", o.Label())
	}
}

func TestDispatch_DenialSkipsHandler(t *testing.T) {
	invoked := 0
	mod := &stubModule{
		name:     "post",
		entities: map[string]resource.Entity{"1": stubEntity{id: "1"}},
		registry: resource.NewRegistry(resource.Builtins{
			Delete: func(ctx context.Context, e resource.Entity, req *resource.Request) (resource.Result, error) {
				invoked++
				return resource.Deleted(), nil
			},
		}),
	}
	d := newTestDispatcher(memory.DenyAll())

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.Delete(), "1", nil)

	if o.Kind() != outcome.KindUnauthorized {
		t.Fatalf("Kind() = %v, want unauthorized", o.Label())
	}
	if invoked != 0 {
		t.Errorf("handler invoked %d times despite denial", invoked)
	}
}

func TestDispatch_DeleteRedirect(t *testing.T) {
	newModule := func() *stubModule {
		return &stubModule{
			name:     "post",
			entities: map[string]resource.Entity{"9": stubEntity{id: "9"}},
			registry: resource.NewRegistry(resource.Builtins{
				Delete: func(ctx context.Context, e resource.Entity, req *resource.Request) (resource.Result, error) {
					return resource.Deleted(), nil
				},
			}),
		}
	}
	d := newTestDispatcher(memory.AllowAll())

	t.Run("from the deleted entity's page", func(t *testing.T) {
		req := &resource.Request{Referrer: "/modules/post/9"}
		o := d.Dispatch(context.Background(), memory.Actor("u1"), newModule(), resource.Delete(), "9", req)

		if o.Kind() != outcome.KindRedirect || o.Target() != "/modules/post/9" {
			t.Errorf("outcome = %v target %q, want redirect back to referrer", o.Label(), o.Target())
		}
		if len(o.Messages()) != 1 || o.Messages()[0].Text != "messages.remove_success" {
			t.Errorf("Messages() = %v, want remove_success key", o.Messages())
		}
	})

	t.Run("from elsewhere", func(t *testing.T) {
		req := &resource.Request{Referrer: "/dashboard"}
		o := d.Dispatch(context.Background(), memory.Actor("u1"), newModule(), resource.Delete(), "9", req)

		if o.Kind() != outcome.KindRedirect || o.Target() != "/modules/post" {
			t.Errorf("outcome = %v target %q, want redirect to listing", o.Label(), o.Target())
		}
		if len(o.Messages()) != 1 || o.Messages()[0].Text != "messages.remove_success" {
			t.Errorf("Messages() = %v, want remove_success key", o.Messages())
		}
	})
}

func TestDispatch_ValidationFailure(t *testing.T) {
	mod := &stubModule{
		name: "post",
		registry: resource.NewRegistry(resource.Builtins{
			Save: func(ctx context.Context, e resource.Entity, req *resource.Request) (resource.Result, error) {
				return resource.Result{}, resource.NewValidationError("label", "label is required")
			},
		}),
	}
	d := newTestDispatcher(memory.AllowAll())

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.Save(), "", nil)

	if o.Kind() != outcome.KindValidationFailed {
		t.Fatalf("Kind() = %v, want validation_failed", o.Label())
	}
	msgs := o.Messages()
	if len(msgs) != 1 || msgs[0].Field != "label" || msgs[0].Text != "label is required" {
		t.Errorf("Messages() = %v", msgs)
	}
}

func TestDispatch_HandlerNotFoundError(t *testing.T) {
	mod := &stubModule{
		name:     "post",
		entities: map[string]resource.Entity{"1": stubEntity{id: "1"}},
		registry: resource.NewRegistry(resource.Builtins{
			Delete: func(ctx context.Context, e resource.Entity, req *resource.Request) (resource.Result, error) {
				return resource.Result{}, resource.ErrNotFound
			},
		}),
	}
	d := newTestDispatcher(memory.AllowAll())

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.Delete(), "1", nil)

	if o.Kind() != outcome.KindNotFound {
		t.Errorf("Kind() = %v, want not_found", o.Label())
	}
}

func TestDispatch_HandlerPanicRecovered(t *testing.T) {
	mod := &stubModule{
		name: "post",
		registry: resource.NewRegistry(resource.Builtins{
			Save: func(ctx context.Context, e resource.Entity, req *resource.Request) (resource.Result, error) {
				panic("boom")
			},
		}),
	}
	d := newTestDispatcher(memory.AllowAll())

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.Save(), "", nil)

	if o.Kind() != outcome.KindFailure || o.FailureKind() != outcome.FailureHandler {
		t.Fatalf("outcome = %v/%v, want handler failure", o.Label(), o.FailureKind())
	}
	if !strings.Contains(o.FailureMessage(), "boom") {
		t.Errorf("FailureMessage() = %q, want panic value included", o.FailureMessage())
	}
}

func TestDispatch_LookupFailure(t *testing.T) {
	mod := &stubModule{
		name:     "post",
		findErr:  errors.New("connection reset"),
		registry: resource.NewRegistry(resource.Builtins{Save: savedHandler(stubEntity{id: "1"})}),
	}
	d := newTestDispatcher(memory.AllowAll())

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.Save(), "1", nil)

	if o.Kind() != outcome.KindFailure || o.FailureKind() != outcome.FailureLookup {
		t.Errorf("outcome = %v/%v, want lookup failure", o.Label(), o.FailureKind())
	}
}

func TestDispatch_SaveWithoutEntityIsFailure(t *testing.T) {
	mod := &stubModule{
		name:     "post",
		registry: resource.NewRegistry(resource.Builtins{Save: savedHandler(nil)}),
	}
	d := newTestDispatcher(memory.AllowAll())

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.Save(), "", nil)

	if o.Kind() != outcome.KindFailure || o.FailureKind() != outcome.FailureHandler {
		t.Errorf("outcome = %v/%v, want handler failure for nil saved entity", o.Label(), o.FailureKind())
	}
}

func TestDispatch_CustomActionRendersPayload(t *testing.T) {
	gate := memory.AllowAll()
	registry := resource.NewRegistry(resource.Builtins{})
	publish, err := resource.Custom("publish")
	if err != nil {
		t.Fatalf("Custom(publish) error: %v", err)
	}
	registry.MustRegister(publish, func(ctx context.Context, e resource.Entity, req *resource.Request) (resource.Result, error) {
		return resource.Rendered(map[string]string{"status": "published"}), nil
	})
	mod := &stubModule{
		name:     "post",
		entities: map[string]resource.Entity{"3": stubEntity{id: "3"}},
		registry: registry,
	}
	d := newTestDispatcher(gate)

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, publish, "3", nil)

	if o.Kind() != outcome.KindPayload {
		t.Fatalf("Kind() = %v, want payload", o.Label())
	}
	body, ok := o.Payload().(map[string]string)
	if !ok || body["status"] != "published" {
		t.Errorf("Payload() = %v", o.Payload())
	}

	calls := gate.Calls()
	if len(calls) != 1 || calls[0].Ability != "publish" {
		t.Errorf("gate calls = %v, want one publish check", calls)
	}
}

func TestDispatch_DetachFileIdempotence(t *testing.T) {
	store := memory.NewMediaStore(idgen.NewSequential("m"), clock.NewFake(time.Now()))
	entity := stubEntity{id: "1"}
	item, err := store.Attach(context.Background(), entity, ports.MediaUpload{Collection: "default", FileName: "a.png"})
	if err != nil {
		t.Fatalf("Attach error: %v", err)
	}

	mod := &stubModule{
		name:     "post",
		entities: map[string]resource.Entity{"1": entity},
		registry: resource.NewRegistry(resource.Builtins{DetachFile: DetachFileHandler(store)}),
	}
	d := newTestDispatcher(memory.AllowAll())
	req := &resource.Request{MediaID: item.ID}

	first := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.DetachFile(), "1", req)
	if first.Kind() != outcome.KindPayload || first.Payload() != nil {
		t.Fatalf("first detach = %v, want empty payload", first.Label())
	}

	second := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.DetachFile(), "1", req)
	if second.Kind() != outcome.KindNotFound {
		t.Errorf("second detach = %v, want not_found", second.Label())
	}
}

func TestDispatch_DetachFileRequiresMediaID(t *testing.T) {
	store := memory.NewMediaStore(idgen.NewSequential("m"), clock.NewFake(time.Now()))
	mod := &stubModule{
		name:     "post",
		entities: map[string]resource.Entity{"1": stubEntity{id: "1"}},
		registry: resource.NewRegistry(resource.Builtins{DetachFile: DetachFileHandler(store)}),
	}
	d := newTestDispatcher(memory.AllowAll())

	o := d.Dispatch(context.Background(), memory.Actor("u1"), mod, resource.DetachFile(), "1", &resource.Request{})

	if o.Kind() != outcome.KindValidationFailed {
		t.Errorf("Kind() = %v, want validation_failed", o.Label())
	}
}

func TestIndex(t *testing.T) {
	gate := memory.AllowAll()
	mod := &stubModule{
		name:     "post",
		entities: map[string]resource.Entity{"1": stubEntity{id: "1"}},
		registry: resource.NewRegistry(resource.Builtins{}),
	}
	d := newTestDispatcher(gate)

	o := d.Index(context.Background(), memory.Actor("u1"), mod, nil)

	if o.Kind() != outcome.KindPayload {
		t.Fatalf("Kind() = %v, want payload", o.Label())
	}
	items, ok := o.Payload().([]resource.Entity)
	if !ok || len(items) != 1 {
		t.Errorf("Payload() = %v, want one entity", o.Payload())
	}

	calls := gate.Calls()
	if len(calls) != 1 || calls[0].Ability != "index" || calls[0].Subject != "" {
		t.Errorf("gate calls = %v, want one index check against blank subject", calls)
	}
}

func TestView(t *testing.T) {
	gate := memory.AllowAll()
	mod := &stubModule{
		name:     "post",
		entities: map[string]resource.Entity{"1": stubEntity{id: "1"}},
		registry: resource.NewRegistry(resource.Builtins{}),
	}
	d := newTestDispatcher(gate)

	t.Run("found", func(t *testing.T) {
		o := d.View(context.Background(), memory.Actor("u1"), mod, "1")
		if o.Kind() != outcome.KindPayload {
			t.Fatalf("Kind() = %v, want payload", o.Label())
		}
		calls := gate.Calls()
		if len(calls) != 1 || calls[0].Ability != "view" || calls[0].Subject != "1" {
			t.Errorf("gate calls = %v, want one view check against entity 1", calls)
		}
	})

	t.Run("missing", func(t *testing.T) {
		o := d.View(context.Background(), memory.Actor("u1"), mod, "2")
		if o.Kind() != outcome.KindNotFound {
			t.Errorf("Kind() = %v, want not_found", o.Label())
		}
	})
}

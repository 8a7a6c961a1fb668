// Package app contains the application services: the action dispatcher,
// the media service, and the search helper. Services depend only on
// domain types and ports; adapters are injected by the caller.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/scaffold/adapters/metrics"
	"github.com/artpar/scaffold/domain/outcome"
	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

// Message catalog keys for flash messages attached to redirects.
const (
	msgCreateSuccess = "messages.create_success"
	msgUpdateSuccess = "messages.update_success"
	msgRemoveSuccess = "messages.remove_success"
)

// Dispatcher routes named actions against resource modules through a
// uniform pipeline: resolve entity, resolve handler, authorize, execute
// inside a failure boundary, classify the result.
//
// Dispatcher is safe for concurrent use. Each call is synchronous and
// request-scoped; timeouts and retries belong to the caller.
type Dispatcher struct {
	gate     ports.Gate
	targets  ports.TargetResolver
	messages ports.MessageCatalog
	metrics  *metrics.Collector
	logger   zerolog.Logger
}

// DispatcherDeps contains dependencies for the dispatcher.
type DispatcherDeps struct {
	Gate     ports.Gate
	Targets  ports.TargetResolver
	Messages ports.MessageCatalog
	Metrics  *metrics.Collector // optional
	Logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	return &Dispatcher{
		gate:     deps.Gate,
		targets:  deps.Targets,
		messages: deps.Messages,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// Dispatch executes one named action against a module on behalf of an
// actor. entityRef is empty for create flows; then the authorization
// subject is an unsaved placeholder from Module.Blank.
//
// Every step is a hard gate: a missing entity returns NotFound before
// anything else (policies need a concrete instance), a missing handler
// registration returns an action-not-supported failure without
// consulting the gate, and a gate denial returns Unauthorized before
// the handler can run. Handler failures are caught and classified; no
// failure escapes Dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, actor resource.Actor, mod resource.Module, name resource.ActionName, entityRef string, req *resource.Request) outcome.Outcome {
	start := time.Now()
	o := d.dispatch(ctx, actor, mod, name, entityRef, req)

	d.logger.Info().
		Str("module", mod.Name()).
		Str("action", name.String()).
		Str("actor", actorID(actor)).
		Str("entity", entityRef).
		Str("outcome", o.Label()).
		Dur("duration", time.Since(start)).
		Msg("dispatch")

	if d.metrics != nil {
		d.metrics.ObserveDispatch(mod.Name(), name.String(), o.Label(), time.Since(start))
	}
	return o
}

func (d *Dispatcher) dispatch(ctx context.Context, actor resource.Actor, mod resource.Module, name resource.ActionName, entityRef string, req *resource.Request) outcome.Outcome {
	if req == nil {
		req = &resource.Request{}
	}
	existing := entityRef != ""

	// Step 1: entity resolution. Never authorize against a nonexistent
	// entity; for create flows a blank placeholder stands in.
	var entity resource.Entity
	if existing {
		e, err := mod.Find(ctx, entityRef)
		if errors.Is(err, resource.ErrNotFound) {
			return outcome.NotFound()
		}
		if err != nil {
			d.logger.Error().Err(err).Str("module", mod.Name()).Str("entity", entityRef).Msg("entity lookup failed")
			return outcome.Failure(outcome.FailureLookup, fmt.Sprintf("lookup %s/%s: %v", mod.Name(), entityRef, err))
		}
		entity = e
	}

	// Step 2: handler resolution. An unsupported action needs no gate
	// consultation; there is nothing it could be allowed to do.
	handler, err := mod.Actions().Resolve(name)
	if err != nil {
		return outcome.Failure(outcome.FailureActionNotSupported, err.Error())
	}

	// Step 3: authorization. Denial short-circuits; the handler must
	// never run on an entity the actor may not touch.
	subject := entity
	if subject == nil {
		subject = mod.Blank()
	}
	if !d.gate.Check(ctx, actor, name.Ability(existing), subject) {
		return outcome.Unauthorized()
	}

	// Step 4: execution inside the failure boundary.
	result, err := d.execute(ctx, handler, entity, req)
	if err != nil {
		var verr *resource.ValidationError
		switch {
		case errors.As(err, &verr):
			return outcome.ValidationFailed(toMessages(verr))
		case errors.Is(err, resource.ErrNotFound):
			return outcome.NotFound()
		default:
			d.logger.Error().Err(err).Str("module", mod.Name()).Str("action", name.String()).Msg("handler failed")
			return outcome.Failure(outcome.FailureHandler, err.Error())
		}
	}

	// Step 5: classification.
	return d.classify(mod, existing, entityRef, req, result)
}

// execute invokes the handler, converting a panic into an error so that
// no failure, however raised, escapes the dispatch boundary.
func (d *Dispatcher) execute(ctx context.Context, handler resource.Handler, entity resource.Entity, req *resource.Request) (result resource.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, entity, req)
}

// classify maps a raw handler result to the transport-facing outcome.
func (d *Dispatcher) classify(mod resource.Module, existing bool, entityRef string, req *resource.Request, result resource.Result) outcome.Outcome {
	switch result.Kind() {
	case resource.ResultSaved:
		saved := result.Entity()
		if saved == nil {
			return outcome.Failure(outcome.FailureHandler, "save handler returned no entity")
		}
		key := msgCreateSuccess
		if existing {
			key = msgUpdateSuccess
		}
		return outcome.Redirect(d.targets.View(mod.Name(), saved.EntityID()), d.messages.Lookup(key))

	case resource.ResultDeleted:
		msg := d.messages.Lookup(msgRemoveSuccess)
		// Redirecting to the deleted entity's own view would land on a
		// dead page; only go back when the caller came from elsewhere.
		if req.Referrer != "" && req.Referrer == d.targets.View(mod.Name(), entityRef) {
			return outcome.Redirect(req.Referrer, msg)
		}
		return outcome.Redirect(d.targets.Listing(mod.Name()), msg)

	case resource.ResultDetached, resource.ResultNoContent:
		return outcome.Payload(nil)

	case resource.ResultRendered:
		return outcome.Payload(result.Payload())
	}

	return outcome.Failure(outcome.FailureHandler, fmt.Sprintf("unrecognized handler result kind %d", result.Kind()))
}

// Index lists a module's entities, gated by the "index" ability against
// a blank subject (the policy question is "may I see this kind of
// thing", not one instance).
func (d *Dispatcher) Index(ctx context.Context, actor resource.Actor, mod resource.Module, f resource.Filter) outcome.Outcome {
	if !d.gate.Check(ctx, actor, "index", mod.Blank()) {
		return outcome.Unauthorized()
	}
	items, err := mod.ListAll(ctx, f)
	if err != nil {
		d.logger.Error().Err(err).Str("module", mod.Name()).Msg("list failed")
		return outcome.Failure(outcome.FailureLookup, err.Error())
	}
	return outcome.Payload(items)
}

// View fetches a single entity, gated by the "view" ability against the
// resolved instance.
func (d *Dispatcher) View(ctx context.Context, actor resource.Actor, mod resource.Module, id string) outcome.Outcome {
	e, err := mod.Find(ctx, id)
	if errors.Is(err, resource.ErrNotFound) {
		return outcome.NotFound()
	}
	if err != nil {
		d.logger.Error().Err(err).Str("module", mod.Name()).Str("entity", id).Msg("entity lookup failed")
		return outcome.Failure(outcome.FailureLookup, err.Error())
	}
	if !d.gate.Check(ctx, actor, "view", e) {
		return outcome.Unauthorized()
	}
	return outcome.Payload(e)
}

func toMessages(verr *resource.ValidationError) []outcome.Message {
	msgs := make([]outcome.Message, 0, len(verr.Messages))
	for _, m := range verr.Messages {
		msgs = append(msgs, outcome.Message{Field: m.Field, Text: m.Message})
	}
	return msgs
}

func actorID(actor resource.Actor) string {
	if actor == nil {
		return ""
	}
	return actor.ActorID()
}

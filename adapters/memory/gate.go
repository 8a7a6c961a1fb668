// Package memory provides in-memory implementations of storage and
// authorization ports, used by tests and the demo server.
package memory

import (
	"context"
	"sync"

	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

// GateCall records one consultation of the gate.
type GateCall struct {
	Actor   string
	Ability string
	Subject string
}

// Gate is a rule-based in-memory authorization gate. It records every
// check so tests can assert ordering and ability mapping.
type Gate struct {
	mu    sync.Mutex
	rule  func(actor resource.Actor, ability string, subject resource.Entity) bool
	calls []GateCall
}

// AllowAll returns a gate that permits everything.
func AllowAll() *Gate {
	return GateFunc(func(resource.Actor, string, resource.Entity) bool { return true })
}

// DenyAll returns a gate that permits nothing.
func DenyAll() *Gate {
	return GateFunc(func(resource.Actor, string, resource.Entity) bool { return false })
}

// GateFunc returns a gate driven by the given rule.
func GateFunc(rule func(actor resource.Actor, ability string, subject resource.Entity) bool) *Gate {
	return &Gate{rule: rule}
}

// Check applies the rule and records the call.
func (g *Gate) Check(ctx context.Context, actor resource.Actor, ability string, subject resource.Entity) bool {
	g.mu.Lock()
	call := GateCall{Ability: ability}
	if actor != nil {
		call.Actor = actor.ActorID()
	}
	if subject != nil {
		call.Subject = subject.EntityID()
	}
	g.calls = append(g.calls, call)
	g.mu.Unlock()

	return g.rule(actor, ability, subject)
}

// Calls returns a copy of all recorded checks (for testing).
func (g *Gate) Calls() []GateCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]GateCall, len(g.calls))
	copy(out, g.calls)
	return out
}

// Ensure interface compliance.
var _ ports.Gate = (*Gate)(nil)

// Actor is a minimal resource.Actor for tests and the demo server.
type Actor string

// ActorID returns the actor identity.
func (a Actor) ActorID() string { return string(a) }

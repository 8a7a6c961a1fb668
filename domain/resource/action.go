package resource

import (
	"fmt"
	"strings"
)

// Kind discriminates built-in actions from custom ones.
type Kind int

const (
	// KindSave persists a new or edited entity.
	KindSave Kind = iota

	// KindDelete removes an entity.
	KindDelete

	// KindDetachFile removes one attached media item from an entity.
	KindDetachFile

	// KindCustom is a module-defined action, addressed as "action::<name>".
	KindCustom
)

// customPrefix namespaces custom action names so they can never collide
// with built-ins.
const customPrefix = "action::"

// ActionName identifies an action on a module. The zero value is Save.
type ActionName struct {
	kind   Kind
	custom string
}

// Save returns the built-in save action name.
func Save() ActionName { return ActionName{kind: KindSave} }

// Delete returns the built-in delete action name.
func Delete() ActionName { return ActionName{kind: KindDelete} }

// DetachFile returns the built-in detach-file action name.
func DetachFile() ActionName { return ActionName{kind: KindDetachFile} }

// Custom returns a custom action name. The identifier must be non-empty
// and must not shadow a built-in action name.
func Custom(identifier string) (ActionName, error) {
	if identifier == "" {
		return ActionName{}, fmt.Errorf("custom action identifier is empty")
	}
	if isBuiltin(identifier) {
		return ActionName{}, fmt.Errorf("custom action %q shadows a built-in action", identifier)
	}
	if strings.Contains(identifier, ":") {
		return ActionName{}, fmt.Errorf("custom action %q contains reserved character ':'", identifier)
	}
	return ActionName{kind: KindCustom, custom: identifier}, nil
}

// ParseAction parses a wire-form action name: one of the built-in names
// ("save", "delete", "detachFile") or "action::<identifier>".
func ParseAction(s string) (ActionName, error) {
	switch s {
	case "save":
		return Save(), nil
	case "delete":
		return Delete(), nil
	case "detachFile":
		return DetachFile(), nil
	}
	if rest, ok := strings.CutPrefix(s, customPrefix); ok {
		return Custom(rest)
	}
	return ActionName{}, fmt.Errorf("unknown action name %q", s)
}

func isBuiltin(s string) bool {
	switch s {
	case "save", "delete", "detachFile":
		return true
	}
	return false
}

// Kind returns the action kind.
func (a ActionName) Kind() Kind { return a.kind }

// Identifier returns the custom identifier, or "" for built-ins.
func (a ActionName) Identifier() string { return a.custom }

// String returns the canonical wire form of the action name.
func (a ActionName) String() string {
	switch a.kind {
	case KindSave:
		return "save"
	case KindDelete:
		return "delete"
	case KindDetachFile:
		return "detachFile"
	case KindCustom:
		return customPrefix + a.custom
	}
	return "unknown"
}

// Ability maps the action to the ability checked against the gate.
// Save depends on whether a stored entity exists: editing an existing
// entity requires "update", creating one requires "create". Detaching a
// file mutates the entity, so it also requires "update". Custom actions
// map to their own identifier, making each individually authorizable.
func (a ActionName) Ability(existing bool) string {
	switch a.kind {
	case KindSave:
		if existing {
			return "update"
		}
		return "create"
	case KindDelete:
		return "delete"
	case KindDetachFile:
		return "update"
	case KindCustom:
		return a.custom
	}
	return ""
}

package resource

import (
	"fmt"
	"strings"
)

// ResultKind discriminates the raw, pre-classification handler results.
type ResultKind int

const (
	// ResultSaved reports a created or updated entity.
	ResultSaved ResultKind = iota

	// ResultDeleted reports a removed entity.
	ResultDeleted

	// ResultDetached reports a removed attachment.
	ResultDetached

	// ResultRendered carries an arbitrary payload for the caller.
	ResultRendered

	// ResultNoContent reports success with nothing to return.
	ResultNoContent
)

// Result is what a handler returns on success. The dispatcher classifies
// it into a transport-facing Outcome.
type Result struct {
	kind    ResultKind
	entity  Entity
	payload any
}

// Saved reports that e was created or updated.
func Saved(e Entity) Result { return Result{kind: ResultSaved, entity: e} }

// Deleted reports that the entity was removed.
func Deleted() Result { return Result{kind: ResultDeleted} }

// Detached reports that an attachment was removed.
func Detached() Result { return Result{kind: ResultDetached} }

// Rendered carries an arbitrary payload through to the caller.
func Rendered(payload any) Result { return Result{kind: ResultRendered, payload: payload} }

// NoContent reports success with an empty body.
func NoContent() Result { return Result{kind: ResultNoContent} }

// Kind returns the result kind.
func (r Result) Kind() ResultKind { return r.kind }

// Entity returns the saved entity for ResultSaved, nil otherwise.
func (r Result) Entity() Entity { return r.entity }

// Payload returns the rendered payload for ResultRendered, nil otherwise.
func (r Result) Payload() any { return r.payload }

// FieldMessage is one user-facing validation message, optionally tied to
// a submitted field.
type FieldMessage struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError is an expected, user-correctable failure: submitted
// values violated a constraint. It carries one or more field/message
// pairs and is classified separately from unexpected handler failures.
type ValidationError struct {
	Messages []FieldMessage
}

// NewValidationError builds a validation error with a single message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Messages: []FieldMessage{{Field: field, Message: message}}}
}

// Add appends a field/message pair.
func (e *ValidationError) Add(field, message string) {
	e.Messages = append(e.Messages, FieldMessage{Field: field, Message: message})
}

// Empty reports whether no messages were collected.
func (e *ValidationError) Empty() bool { return len(e.Messages) == 0 }

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		if m.Field != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", m.Field, m.Message))
			continue
		}
		parts = append(parts, m.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Package outcome defines the dispatcher's normalized result value.
// An Outcome is entirely decoupled from transport: no HTTP types, no URLs
// beyond opaque target strings supplied by the caller's target resolver.
package outcome

// Kind discriminates outcome variants.
type Kind int

const (
	// KindRedirect sends the caller to a new location with flash messages.
	KindRedirect Kind = iota

	// KindPayload carries a JSON-like value to render directly.
	KindPayload

	// KindValidationFailed routes back to the submitting view with
	// user-facing messages attached.
	KindValidationFailed

	// KindUnauthorized reports a gate denial.
	KindUnauthorized

	// KindNotFound reports a missing entity or attachment.
	KindNotFound

	// KindFailure reports a handler or configuration error.
	KindFailure
)

// FailureKind refines KindFailure.
type FailureKind string

const (
	// FailureActionNotSupported means no handler is registered for the
	// action name on this module. Distinct from NotFound, which is about
	// the entity.
	FailureActionNotSupported FailureKind = "action_not_supported"

	// FailureHandler is an unexpected domain or infrastructure error
	// raised by a handler.
	FailureHandler FailureKind = "handler_error"

	// FailureLookup is an infrastructure error while resolving the
	// entity (as opposed to the entity simply being absent).
	FailureLookup FailureKind = "lookup_error"
)

// Message is one user-facing message, optionally tied to a field.
type Message struct {
	Field string `json:"field,omitempty"`
	Text  string `json:"text"`
}

// Outcome is the normalized, transport-agnostic dispatch result.
type Outcome struct {
	kind        Kind
	target      string
	messages    []Message
	payload     any
	failureKind FailureKind
	failureMsg  string
}

// Redirect sends the caller to target, carrying flash messages.
func Redirect(target string, messages ...string) Outcome {
	o := Outcome{kind: KindRedirect, target: target}
	for _, m := range messages {
		o.messages = append(o.messages, Message{Text: m})
	}
	return o
}

// Payload carries v directly. v may be nil for an empty body.
func Payload(v any) Outcome {
	return Outcome{kind: KindPayload, payload: v}
}

// ValidationFailed carries user-correctable validation messages.
func ValidationFailed(messages []Message) Outcome {
	return Outcome{kind: KindValidationFailed, messages: messages}
}

// Unauthorized reports a gate denial.
func Unauthorized() Outcome { return Outcome{kind: KindUnauthorized} }

// NotFound reports a missing entity or attachment.
func NotFound() Outcome { return Outcome{kind: KindNotFound} }

// Failure reports a handler or configuration error of the given kind.
func Failure(kind FailureKind, message string) Outcome {
	return Outcome{kind: KindFailure, failureKind: kind, failureMsg: message}
}

// Kind returns the outcome variant.
func (o Outcome) Kind() Kind { return o.kind }

// Target returns the redirect target, or "" for non-redirects.
func (o Outcome) Target() string { return o.target }

// Messages returns the attached flash or validation messages.
func (o Outcome) Messages() []Message { return o.messages }

// Payload returns the carried value for KindPayload outcomes.
func (o Outcome) Payload() any { return o.payload }

// FailureKind returns the failure refinement for KindFailure outcomes.
func (o Outcome) FailureKind() FailureKind { return o.failureKind }

// FailureMessage returns the failure description for KindFailure outcomes.
func (o Outcome) FailureMessage() string { return o.failureMsg }

// Label returns a short stable name for the outcome variant, used in
// logs and metrics.
func (o Outcome) Label() string {
	switch o.kind {
	case KindRedirect:
		return "redirect"
	case KindPayload:
		return "payload"
	case KindValidationFailed:
		return "validation_failed"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindFailure:
		return "failure"
	}
	return "unknown"
}

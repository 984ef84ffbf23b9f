package workflow

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies the domain errors a transition request can produce.
// All four kinds are recoverable by the caller; infrastructure failures are
// plain wrapped errors and never carry a kind.
type ErrorKind string

const (
	KindUnknownTransition ErrorKind = "unknown_transition"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindNotFound          ErrorKind = "not_found"
	KindInvalidState      ErrorKind = "invalid_state"
	KindGuardFailed       ErrorKind = "guard_failed"
)

// Error is a structured domain error. GuardFailed carries every violated
// reason, not just the first.
type Error struct {
	Kind    ErrorKind
	Message string
	Reasons []string
}

func (e *Error) Error() string {
	if len(e.Reasons) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Reasons, "; "))
	}
	return e.Message
}

// HTTPStatus returns the status code hint for the error kind
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusConflict
	case KindGuardFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// NewUnknownTransition reports a transition name absent from the registry
func NewUnknownTransition(name string) *Error {
	return &Error{
		Kind:    KindUnknownTransition,
		Message: fmt.Sprintf("unknown transition %q", name),
	}
}

// NewUnauthorized reports an actor role not permitted for the transition
func NewUnauthorized(role Role, transition string) *Error {
	return &Error{
		Kind:    KindUnauthorized,
		Message: fmt.Sprintf("role %q is not permitted to execute transition %q", role, transition),
	}
}

// NewNotFound reports a missing draft
func NewNotFound(draftID string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("draft %q not found", draftID),
	}
}

// NewInvalidState reports a status mismatch, including both the actual and
// the expected source state. actual may be empty when the conditional update
// lost the race and the re-read failed.
func NewInvalidState(transition string, actual, expected Status) *Error {
	msg := fmt.Sprintf("transition %q requires status %q", transition, expected)
	if actual != "" {
		msg = fmt.Sprintf("%s, draft is %q", msg, actual)
	}
	return &Error{
		Kind:    KindInvalidState,
		Message: msg,
	}
}

// NewGuardFailed reports every guard violation accumulated for the transition
func NewGuardFailed(transition string, reasons []string) *Error {
	return &Error{
		Kind:    KindGuardFailed,
		Message: fmt.Sprintf("guard rejected transition %q", transition),
		Reasons: reasons,
	}
}

// AsError extracts a domain *Error from an error chain
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

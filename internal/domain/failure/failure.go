// Package failure defines the error taxonomy shared by the messaging
// subsystem. Every failure carries a stable machine-readable Kind and a
// human-readable message so clients can tell retry-safe failures apart
// from request errors.
package failure

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-readable failure category.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindPermission Kind = "permission"
	KindTransient  Kind = "transient"
	// KindInternal is reported for errors outside the taxonomy.
	KindInternal Kind = "internal"
)

// Error is a categorised failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the same request.
// INVARIANT: only transient failures are retryable
func (e *Error) Retryable() bool {
	return e.Kind == KindTransient
}

// Validation reports a malformed or disallowed request.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound reports a missing entity. what names the entity ("book", "user").
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// Permission reports an action the viewer is not allowed to take.
func Permission(msg string) *Error {
	return &Error{Kind: KindPermission, Message: msg}
}

// Transient wraps an infrastructure fault the caller may retry with backoff.
func Transient(op string, err error) *Error {
	return &Error{Kind: KindTransient, Message: op + " unavailable", Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
// PRE: none
// POST: returns "" for nil, KindInternal for errors outside the taxonomy
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the client-safe message for err.
// Errors outside the taxonomy never leak their text.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "internal server error"
}

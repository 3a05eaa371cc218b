// Package apperror defines the closed set of error kinds shared across
// the Core so that HTTP adapters can map a failure to a status code and
// error body in exactly one place, instead of re-deriving it per handler.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is a closed classification of Core failures.
type Kind string

const (
	// KindValidation covers bad input: missing fields, malformed paths,
	// envelopes built without a trace ID, unknown taxonomy events.
	KindValidation Kind = "validation"
	// KindNotFound covers missing tenants, sessions, capabilities, directories.
	KindNotFound Kind = "not_found"
	// KindConflict covers VFS uniqueness violations and out-of-order ledger appends.
	KindConflict Kind = "conflict"
	// KindUnauthorized covers guard failures: missing headers, missing identity.
	KindUnauthorized Kind = "unauthorized"
	// KindForbidden covers policy denials and insufficient role.
	KindForbidden Kind = "forbidden"
	// KindIntegrity covers hash mismatches, broken chains, bad signatures.
	KindIntegrity Kind = "integrity"
	// KindGovernanceBlock covers execution denied by governance mode or feature flag.
	KindGovernanceBlock Kind = "governance_block"
	// KindTransient covers sink delivery failures and session-touch failures.
	KindTransient Kind = "transient"
)

// Error is a typed Core error carrying a Kind, a stable Code for API
// consumers, and a human Message. It wraps an optional underlying cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error of the given kind and code.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates an *Error of the given kind and code around a cause.
func Wrap(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

// As extracts an *Error from err, if present.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindTransient if err is not a
// typed *Error (an untyped error is treated as retryable/unclassified).
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindTransient
}

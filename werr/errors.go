// Package werr defines the error type returned by the collection, condition,
// plan and index packages. It follows the same Code+Message shape as
// storage.Error in the teacher codebase, so callers can branch on a
// stable code instead of matching error strings.
package werr

import "fmt"

// Code identifies the class of error produced by this module.
type Code int

const (
	// Internal indicates a bug: an invariant the package itself is supposed
	// to maintain was violated.
	Internal Code = iota

	// NotFound indicates refresh was called for an object that has no box
	// in the collection.
	NotFound

	// UniqueViolation indicates a unique index already holds an object under
	// the key being inserted.
	UniqueViolation

	// UnsupportedPlan indicates the executor was given a plan node it does
	// not know how to interpret.
	UnsupportedPlan

	// UnsupportedCondition indicates the matcher or planner was given a
	// condition node it does not know how to interpret.
	UnsupportedCondition

	// PredicateType indicates a predicate could not be evaluated because of
	// an incompatible value comparison (e.g. string compared to number), or
	// a parser failure when compiling a string predicate.
	PredicateType
)

func (c Code) String() string {
	switch c {
	case NotFound:
		return "not_found"
	case UniqueViolation:
		return "unique_violation"
	case UnsupportedPlan:
		return "unsupported_plan"
	case UnsupportedCondition:
		return "unsupported_condition"
	case PredicateType:
		return "predicate_type"
	default:
		return "internal"
	}
}

// Error is the error type returned by this module.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("wut error (%s): %s", e.Code, e.Message)
}

// New constructs an *Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code from err, returning Internal if err is not an
// *Error and -1 (no code) if err is nil.
func CodeOf(err error) Code {
	var e *Error
	if err == nil {
		return -1
	}
	if as, ok := err.(*Error); ok {
		e = as
		return e.Code
	}
	return Internal
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}

package eval

import (
	"errors"
	"fmt"
)

// ErrorKind classifies evaluation failures.
type ErrorKind string

const (
	// MissingContext: one or more named event stores could not be resolved.
	MissingContext ErrorKind = "missing-context"
	// InvalidArgument: a required entity argument was nil.
	InvalidArgument ErrorKind = "invalid-argument"
	// UnresolvedReference: one element of an aggregate could not be resolved
	// and was skipped. Never fatal, even in strict mode.
	UnresolvedReference ErrorKind = "unresolved-reference"
)

// Sentinel errors, one per kind. EvalError values match them with errors.Is.
var (
	ErrMissingContext      = errors.New("event stores unavailable")
	ErrInvalidArgument     = errors.New("nil argument")
	ErrUnresolvedReference = errors.New("unresolved reference")
)

var kindSentinels = map[ErrorKind]error{
	MissingContext:      ErrMissingContext,
	InvalidArgument:     ErrInvalidArgument,
	UnresolvedReference: ErrUnresolvedReference,
}

// EvalError is returned by ClusterEval queries alongside their sentinel result.
type EvalError struct {
	Kind   ErrorKind
	Op     string
	Detail string
}

func (e *EvalError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, kindSentinels[e.Kind])
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, kindSentinels[e.Kind], e.Detail)
}

// Unwrap exposes the kind's sentinel error.
func (e *EvalError) Unwrap() error { return kindSentinels[e.Kind] }

// KindOf returns the ErrorKind of err, or "" if err is not an evaluation error.
func KindOf(err error) ErrorKind {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}

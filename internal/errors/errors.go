// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. Flow steps use the kinds to decide whether a failure
// aborts the remaining sequence, and reports group failures by kind.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// so callers can use both errors.As on *E and errors.Is on the sentinels below.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Transport indicates the request never produced an HTTP response.
	Transport Kind = "transport"
	// UnexpectedStatus indicates a response outside the accepted status set.
	UnexpectedStatus Kind = "unexpected_status"
	// Decode indicates a body that could not be parsed in the expected shape.
	Decode Kind = "decode"
	// MissingDependency indicates a step needed an identifier an earlier step did not produce.
	MissingDependency Kind = "missing_dependency"
)

var (
	// ErrAborted marks a flow that stopped at a gating step.
	ErrAborted = stderrors.New("flow aborted")
	// ErrMissingDependency is matched by every MissingDependency error.
	ErrMissingDependency = stderrors.New("missing dependency")
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrMissingDependency) match any MissingDependency error.
func (e *E) Is(target error) bool {
	return target == ErrMissingDependency && e.Kind == MissingDependency
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in the chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

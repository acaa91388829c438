// SPDX-License-Identifier: LGPL-2.1-or-later

// Package elogerr defines the error kinds the core emits, per the error
// handling design: a structured kind plus context, left for the bus layer
// to map onto transport-specific error names.
package elogerr

import (
	"errors"
	"fmt"
)

// Kind is one of the error kinds the core reports.
type Kind string

const (
	KindOutOfResources  Kind = "out_of_resources"
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindPermissionDenied Kind = "permission_denied"
	KindBusy            Kind = "busy"
	KindIOError         Kind = "io_error"
	KindUnsupported     Kind = "unsupported"
)

// Error wraps a Kind with context and an optional underlying cause.
type Error struct {
	Kind    Kind
	Context string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Context)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error of the given kind.
func New(kind Kind, context string) *Error {
	return &Error{Kind: kind, Context: context}
}

// Wrap builds an *Error of the given kind wrapping cause.
func Wrap(kind Kind, context string, cause error) *Error {
	return &Error{Kind: kind, Context: context, Cause: cause}
}

// Is allows errors.Is(err, elogerr.OutOfResources) style sentinel checks
// against a bare Kind value.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && t.Context == "" && t.Cause == nil
	}
	return false
}

// Sentinel kind markers for errors.Is comparisons, e.g.
// errors.Is(err, elogerr.OutOfResources).
var (
	OutOfResources  = &Error{Kind: KindOutOfResources}
	InvalidArgument = &Error{Kind: KindInvalidArgument}
	NotFound        = &Error{Kind: KindNotFound}
	PermissionDenied = &Error{Kind: KindPermissionDenied}
	Busy            = &Error{Kind: KindBusy}
	IOError         = &Error{Kind: KindIOError}
	Unsupported     = &Error{Kind: KindUnsupported}
)

// KindOf extracts the Kind from err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

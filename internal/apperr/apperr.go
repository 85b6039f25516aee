// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package apperr defines the application error taxonomy.
//
// Every failure that crosses a service boundary is classified into one of
// five kinds, each with a fixed HTTP mapping at the API layer:
//
//	Unauthenticated -> 401  missing/malformed/expired/blacklisted credential
//	Forbidden       -> 403  authenticated but not entitled
//	NotFound        -> 404  genuine absence, or existence-hiding on private resources
//	Conflict        -> 409  uniqueness violation on name/slug/email/username
//	Invalid         -> 400  malformed or out-of-contract request input
//	Fatal           -> 500  cascade partial failure, storage unavailability
//
// Internal error detail is wrapped for logging but never leaves the process
// in a response body.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindUnknown is the zero value; treated as Fatal at the boundary.
	KindUnknown Kind = iota

	// KindUnauthenticated covers every credential failure.
	KindUnauthenticated

	// KindForbidden means the caller is authenticated but not entitled.
	KindForbidden

	// KindNotFound covers absence and deliberate existence-hiding.
	KindNotFound

	// KindConflict covers uniqueness violations.
	KindConflict

	// KindInvalid covers malformed or out-of-contract request input.
	KindInvalid

	// KindFatal covers storage failures and partially applied cascades.
	KindFatal
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error carries a kind, a fixed user-facing message, and an optional
// wrapped internal cause.
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

// Unwrap exposes the internal cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with a fixed message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind wrapping an internal cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Unauthenticated creates an Unauthenticated error.
func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

// Forbidden creates a Forbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// NotFound creates a NotFound error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Conflict creates a Conflict error.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Invalid creates an Invalid error.
func Invalid(message string) *Error {
	return New(KindInvalid, message)
}

// Fatal creates a Fatal error wrapping an internal cause.
func Fatal(message string, err error) *Error {
	return Wrap(KindFatal, message, err)
}

// KindOf extracts the kind from an error chain.
// Errors outside the taxonomy are classified KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether the error chain contains an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

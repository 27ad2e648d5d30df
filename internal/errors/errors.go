// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so commands can decide how to present a failure
// (connection problem, failed statement, usage warning) without string matching.
//
// The package supports wrapping underlying driver errors while maintaining error kind
// information; use Is/KindOf with the standard library errors package to inspect them.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConnectionFailed indicates the driver could not establish or authenticate a connection.
	ConnectionFailed Kind = "connection_failed"
	// StatementFailed indicates a single statement of a batch failed.
	StatementFailed Kind = "statement_failed"
	// NotConnected indicates an execution was attempted without an active connection.
	NotConnected Kind = "not_connected"
	// UsageWarning is a user-facing, non-error condition such as an empty current line.
	UsageWarning Kind = "usage_warning"
	// KeychainUnavailable indicates secure credential storage could not be opened.
	KeychainUnavailable Kind = "keychain_unavailable"
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

// Unwrap exposes the underlying driver error.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

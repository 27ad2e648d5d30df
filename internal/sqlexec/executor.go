// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlexec runs SQL statements one after another against a session's
// active connection and reports one Result per statement.
//
// Key behaviors:
//   - Statements run strictly in input order, each to completion before the next
//   - A failing statement becomes an error Result and never stops the batch
//   - Results are yielded lazily so a surface can show each one as soon as it exists
//   - Running the line under a cursor goes through a caller supplied confirmation
package sqlexec

import (
	"context"
	"errors"
	"fmt"
	"iter"

	apperr "sqlbench/cli/internal/errors"
	"sqlbench/cli/internal/logging"
	"sqlbench/cli/internal/session"
	"sqlbench/cli/internal/statement"

	"github.com/pterm/pterm"
)

// NoQueryOnLine is the warning shown when the cursor sits on a blank line.
const NoQueryOnLine = "No query is selected on the current line."

// ErrDeclined is returned when the user declines to run the current line.
var ErrDeclined = errors.New("execution declined")

// ConfirmFunc asks the user whether the given statement should run.
type ConfirmFunc func(statement string) (bool, error)

// Executor runs statements against the active connection of a session.
type Executor struct {
	session *session.Manager
	split   statement.Splitter
	logger  *pterm.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithSplitter replaces the default statement splitter.
func WithSplitter(s statement.Splitter) Option {
	return func(e *Executor) {
		if s != nil {
			e.split = s
		}
	}
}

// WithLogger sets the logger used for per statement debug output.
func WithLogger(l *pterm.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Executor over the given session.
func New(s *session.Manager, opts ...Option) *Executor {
	e := &Executor{
		session: s,
		split:   statement.Split,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Session returns the session the executor runs against.
func (e *Executor) Session() *session.Manager {
	return e.session
}

// Split breaks text into statements with the configured splitter.
func (e *Executor) Split(text string) []string {
	return e.split(text)
}

// ExecuteAll runs each statement in order and yields its result as soon as it
// completes. The next statement starts only when the consumer asks for it;
// stopping the range stops the batch.
func (e *Executor) ExecuteAll(ctx context.Context, statements []string) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		for i, stmt := range statements {
			e.logger.Debug("executing statement", e.logger.Args("index", i+1, "of", len(statements)))
			if !yield(e.Execute(ctx, stmt)) {
				return
			}
		}
	}
}

// ExecuteText splits text and runs every statement.
func (e *Executor) ExecuteText(ctx context.Context, text string) iter.Seq[Result] {
	return e.ExecuteAll(ctx, e.split(text))
}

// Execute runs a single statement. Failures are reported in the Result.
func (e *Executor) Execute(ctx context.Context, stmt string) Result {
	res := Result{Statement: stmt, Columns: []string{}, Rows: [][]any{}}

	conn, ok := e.session.Active()
	if !ok {
		res.Error = failureMessage(stmt, apperr.New(apperr.NotConnected, "not connected to a database server"))
		return res
	}

	rows, err := conn.Query(ctx, stmt)
	if err != nil {
		e.logger.Debug("statement failed", e.logger.Args("error", logging.Mask(err.Error())))
		res.Error = failureMessage(stmt, err)
		return res
	}

	if rows.Columns != nil {
		res.Columns = rows.Columns
	}
	if rows.Values != nil {
		res.Rows = rows.Values
	}
	res.RowsAffected = rows.RowsAffected
	return res
}

// ExecuteCurrentLine runs the line of text that contains offset.
//
// A blank line returns a *Warning and runs nothing. Otherwise confirm is asked
// first (nil means yes); a declined confirmation returns ErrDeclined.
func (e *Executor) ExecuteCurrentLine(ctx context.Context, text string, offset int, confirm ConfirmFunc) (Result, error) {
	line, ok := statement.CurrentLine(text, offset)
	if !ok {
		return Result{}, &Warning{Message: NoQueryOnLine}
	}

	if confirm != nil {
		yes, err := confirm(line)
		if err != nil {
			return Result{}, err
		}
		if !yes {
			return Result{}, ErrDeclined
		}
	}

	return e.Execute(ctx, line), nil
}

// failureMessage prefixes the driver message with the failing statement.
func failureMessage(stmt string, err error) string {
	msg := err.Error()
	var e *apperr.E
	if errors.As(err, &e) && e.Err == nil {
		msg = e.Message
	}
	return fmt.Sprintf("Failed to execute query: %s\n%s", stmt, msg)
}

// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package bridge lets commands drive a workbench without caring where the
// database connection lives: in this process (Local) or in a server started
// with 'sqlbench serve' (the grpcclient implementation).
package bridge

import (
	"context"
	"iter"

	"sqlbench/cli/internal/bridge/grpcclient"
	"sqlbench/cli/internal/dsn"
	"sqlbench/cli/internal/sqlexec"
)

// Workbench is a session that runs SQL text.
type Workbench interface {
	Connect(ctx context.Context, info *dsn.DSNInfo) error
	Disconnect(ctx context.Context) error
	// Execute runs every statement of text and yields one result per statement
	// in order. A non-nil error means the transport failed, not a statement.
	Execute(ctx context.Context, text string) iter.Seq2[sqlexec.Result, error]
	// ExecuteLine runs the line containing offset after confirm approves it.
	ExecuteLine(ctx context.Context, text string, offset int, confirm sqlexec.ConfirmFunc) (sqlexec.Result, error)
	Close() error
}

// Local runs statements on a connection owned by this process.
type Local struct {
	exec *sqlexec.Executor
}

// NewLocal wraps an executor.
func NewLocal(exec *sqlexec.Executor) *Local {
	return &Local{exec: exec}
}

func (l *Local) Connect(ctx context.Context, info *dsn.DSNInfo) error {
	_, err := l.exec.Session().Connect(ctx, info)
	return err
}

func (l *Local) Disconnect(ctx context.Context) error {
	return l.exec.Session().Disconnect(ctx)
}

func (l *Local) Execute(ctx context.Context, text string) iter.Seq2[sqlexec.Result, error] {
	return func(yield func(sqlexec.Result, error) bool) {
		for r := range l.exec.ExecuteText(ctx, text) {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (l *Local) ExecuteLine(ctx context.Context, text string, offset int, confirm sqlexec.ConfirmFunc) (sqlexec.Result, error) {
	return l.exec.ExecuteCurrentLine(ctx, text, offset, confirm)
}

// Close disconnects the local session.
func (l *Local) Close() error {
	return l.exec.Session().Disconnect(context.Background())
}

// Remote dials a workbench server.
func Remote(addr, session string, lexical bool) (Workbench, error) {
	c, err := grpcclient.Dial(addr, session)
	if err != nil {
		return nil, err
	}
	c.SetLexical(lexical)
	return c, nil
}

var (
	_ Workbench = (*Local)(nil)
	_ Workbench = (*grpcclient.Client)(nil)
)

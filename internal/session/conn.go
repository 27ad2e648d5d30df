// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session owns the single live database connection a workbench talks to.
//
// A Manager holds at most one Conn. It is opened by an explicit Connect and
// closed by Disconnect; nothing in this package keeps package-level state, so
// every shell, CLI invocation or bridge session gets its own Manager.
package session

import (
	"context"
	"fmt"

	"sqlbench/cli/internal/dsn"
)

// Conn is one open driver handle.
type Conn interface {
	// Query runs a single statement and returns its rows. Statements that
	// produce no rows return an empty column set.
	Query(ctx context.Context, statement string) (*Rows, error)
	Close(ctx context.Context) error
}

// Rows is a fully read result set in driver order.
type Rows struct {
	Columns      []string
	Values       [][]any
	RowsAffected int64
}

// Dialer opens a connection for the given credentials.
type Dialer func(ctx context.Context, info *dsn.DSNInfo) (Conn, error)

// DefaultDialer picks the driver from the credential type.
func DefaultDialer(ctx context.Context, info *dsn.DSNInfo) (Conn, error) {
	driverDSN, err := dsn.DriverDSN(info)
	if err != nil {
		return nil, err
	}

	switch info.Type {
	case dsn.DBTypeMySQL:
		return openMySQL(ctx, driverDSN)
	case dsn.DBTypePostgreSQL:
		return openPostgres(ctx, driverDSN)
	}
	return nil, fmt.Errorf("unsupported database type %q", info.Type)
}

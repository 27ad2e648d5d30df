// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// pgxConn is a single non-pooled PostgreSQL connection.
type pgxConn struct {
	conn *pgx.Conn
}

func openPostgres(ctx context.Context, driverDSN string) (Conn, error) {
	conn, err := pgx.Connect(ctx, driverDSN)
	if err != nil {
		return nil, err
	}
	return &pgxConn{conn: conn}, nil
}

func (c *pgxConn) Query(ctx context.Context, statement string) (*Rows, error) {
	rows, err := c.conn.Query(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	res := &Rows{Columns: make([]string, len(fds)), Values: [][]any{}}
	for i, fd := range fds {
		res.Columns[i] = fd.Name
	}

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		res.Values = append(res.Values, vals)
	}
	// Errors from the server surface only once the rows are drained.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	res.RowsAffected = rows.CommandTag().RowsAffected()
	return res, nil
}

func (c *pgxConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

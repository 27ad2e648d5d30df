// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"unicode"

	_ "github.com/go-sql-driver/mysql"
)

// execKeywords start statements that never return a result set. They run
// through Exec so the server's affected row count is reported.
var execKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "REPLACE": true,
	"CREATE": true, "DROP": true, "ALTER": true, "TRUNCATE": true, "RENAME": true,
	"GRANT": true, "REVOKE": true, "SET": true, "USE": true,
	"BEGIN": true, "START": true, "COMMIT": true, "ROLLBACK": true, "SAVEPOINT": true,
	"LOCK": true, "UNLOCK": true, "LOAD": true,
}

// MariaDB lets DML return rows.
var returningClause = regexp.MustCompile(`(?i)\bRETURNING\b`)

// sqlConn runs statements over database/sql pinned to one physical
// connection, so session state such as USE or SET survives between statements.
type sqlConn struct {
	db *sql.DB
}

func openMySQL(ctx context.Context, driverDSN string) (Conn, error) {
	db, err := sql.Open("mysql", driverDSN)
	if err != nil {
		return nil, err
	}
	c := &sqlConn{db: db}
	limitToOne(db)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewSQLConn wraps an open database/sql handle, limiting it to one connection.
func NewSQLConn(db *sql.DB) Conn {
	limitToOne(db)
	return &sqlConn{db: db}
}

func limitToOne(db *sql.DB) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
}

func (c *sqlConn) Query(ctx context.Context, statement string) (*Rows, error) {
	if returnsNoRows(statement) {
		res, err := c.db.ExecContext(ctx, statement)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			affected = 0
		}
		return &Rows{Values: [][]any{}, RowsAffected: affected}, nil
	}

	rows, err := c.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Rows{Columns: columns, Values: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			// The text protocol hands back raw bytes for most column types.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		res.Values = append(res.Values, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *sqlConn) Close(_ context.Context) error {
	return c.db.Close()
}

// returnsNoRows reports whether statement is known not to produce a result
// set. Anything unrecognized is treated as a query.
func returnsNoRows(statement string) bool {
	kw := leadingKeyword(statement)
	return execKeywords[kw] && !returningClause.MatchString(statement)
}

// leadingKeyword returns the first word of statement in upper case, skipping
// whitespace, comments and opening parentheses.
func leadingKeyword(statement string) string {
	s := statement
	for {
		s = strings.TrimLeftFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '(' })
		switch {
		case strings.HasPrefix(s, "--"), strings.HasPrefix(s, "#"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s, "*/")
			if i < 0 {
				return ""
			}
			s = s[i+2:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
			if end < 0 {
				end = len(s)
			}
			return strings.ToUpper(s[:end])
		}
	}
}

// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"errors"
	"testing"

	"sqlbench/cli/internal/dsn"
	"sqlbench/cli/internal/session"
	"sqlbench/cli/internal/statement"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connectedExecutor returns an executor whose session is connected to sqlmock.
func connectedExecutor(t *testing.T, opts ...Option) (*Executor, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dial := func(context.Context, *dsn.DSNInfo) (session.Conn, error) {
		return session.NewSQLConn(db), nil
	}
	m := session.NewManager(dial, nil)

	info, err := dsn.FromCredentials(dsn.DBTypeMySQL, "localhost", "", "root", "secret", "")
	require.NoError(t, err)
	_, err = m.Connect(context.Background(), info)
	require.NoError(t, err)

	return New(m, opts...), mock
}

func collect(seq func(func(Result) bool)) []Result {
	var out []Result
	for r := range seq {
		out = append(out, r)
	}
	return out
}

func TestExecuteAllContinuesAfterFailure(t *testing.T) {
	e, mock := connectedExecutor(t)

	mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(`SELEC broken`).WillReturnError(errors.New("You have an error in your SQL syntax"))
	mock.ExpectQuery(`SELECT 3`).WillReturnRows(sqlmock.NewRows([]string{"3"}).AddRow(3))

	results := collect(e.ExecuteAll(context.Background(), []string{"SELECT 1", "SELEC broken", "SELECT 3"}))

	require.Len(t, results, 3)
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.Contains(t, results[1].Error, "SELEC broken")
	assert.Equal(t, "Failed to execute query: SELEC broken\nYou have an error in your SQL syntax", results[1].Error)
	assert.False(t, results[2].Failed())
	assert.Equal(t, "SELECT 3", results[2].Statement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteAllStopsWhenConsumerStops(t *testing.T) {
	e, mock := connectedExecutor(t)

	mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	var seen int
	for range e.ExecuteAll(context.Background(), []string{"SELECT 1", "SELECT 2"}) {
		seen++
		break
	}

	assert.Equal(t, 1, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteTextUsesConfiguredSplitter(t *testing.T) {
	e, mock := connectedExecutor(t, WithSplitter(statement.SplitLexical))

	mock.ExpectQuery(`SELECT 'a;b'`).WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("a;b"))

	results := collect(e.ExecuteText(context.Background(), "SELECT 'a;b';"))
	require.Len(t, results, 1)
	assert.Equal(t, []map[string]any{{"v": "a;b"}}, results[0].Records())
}

func TestExecuteNotConnected(t *testing.T) {
	e := New(session.NewManager(nil, nil))

	results := collect(e.ExecuteAll(context.Background(), []string{"SELECT 1", "SELECT 2"}))

	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Failed())
		assert.Contains(t, r.Error, "not connected")
	}
}

func TestExecuteCurrentLine(t *testing.T) {
	const text = "SELECT 1;\nSELECT 2;\n"

	t.Run("runs only the line under the cursor", func(t *testing.T) {
		e, mock := connectedExecutor(t)
		mock.ExpectQuery(`SELECT 2;`).WillReturnRows(sqlmock.NewRows([]string{"2"}).AddRow(2))

		var asked string
		res, err := e.ExecuteCurrentLine(context.Background(), text, 13, func(s string) (bool, error) {
			asked = s
			return true, nil
		})

		require.NoError(t, err)
		assert.Equal(t, "SELECT 2;", asked)
		assert.Equal(t, "SELECT 2;", res.Statement)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blank line warns", func(t *testing.T) {
		e, mock := connectedExecutor(t)

		_, err := e.ExecuteCurrentLine(context.Background(), text, len(text), nil)

		var w *Warning
		require.ErrorAs(t, err, &w)
		assert.Equal(t, NoQueryOnLine, w.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("declined runs nothing", func(t *testing.T) {
		e, mock := connectedExecutor(t)

		_, err := e.ExecuteCurrentLine(context.Background(), text, 0, func(string) (bool, error) {
			return false, nil
		})

		assert.ErrorIs(t, err, ErrDeclined)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

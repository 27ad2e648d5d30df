// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package shell

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"sqlbench/cli/internal/buffer"
	"sqlbench/cli/internal/dsn"
	"sqlbench/cli/internal/render"
	"sqlbench/cli/internal/session"
	"sqlbench/cli/internal/sqlexec"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	pterm.DisableStyling()
}

type harness struct {
	shell     *Shell
	out       *bytes.Buffer
	collector *render.Collector
	mock      sqlmock.Sqlmock
	connected []*dsn.DSNInfo
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	h := &harness{out: &bytes.Buffer{}, collector: &render.Collector{}, mock: mock}
	dial := func(context.Context, *dsn.DSNInfo) (session.Conn, error) {
		return session.NewSQLConn(db), nil
	}
	h.shell = New(Options{
		In:          strings.NewReader(input),
		Out:         h.out,
		Executor:    sqlexec.New(session.NewManager(dial, nil)),
		Surface:     h.collector,
		ConfirmLine: true,
		OnConnect:   func(info *dsn.DSNInfo) { h.connected = append(h.connected, info) },
	})
	return h
}

func TestShellSession(t *testing.T) {
	saved := filepath.Join(t.TempDir(), "out.sql")
	input := strings.Join([]string{
		`\connect mysql://root:pw@localhost:3306`,
		`SELECT 1;`,
		`SELECT`,
		` 2;`,
		`\line 0`,
		`y`,
		`\save ` + saved,
		`\status`,
		`\disconnect`,
		`\q`,
		`SELECT 'never reached';`,
	}, "\n") + "\n"

	h := newHarness(t, input)
	h.mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	h.mock.ExpectQuery(`SELECT 2`).WillReturnRows(sqlmock.NewRows([]string{"2"}).AddRow(2))
	h.mock.ExpectQuery(`SELECT 1;`).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	h.mock.ExpectClose()

	require.NoError(t, h.shell.Run(context.Background()))

	require.Len(t, h.connected, 1)
	assert.Equal(t, "root", h.connected[0].User)

	require.Len(t, h.collector.Results, 3)
	assert.Equal(t, "SELECT 1", h.collector.Results[0].Statement)
	assert.Equal(t, "SELECT\n 2", h.collector.Results[1].Statement)
	assert.Equal(t, "SELECT 1;", h.collector.Results[2].Statement)

	got, err := buffer.Load(saved)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;\nSELECT\n 2;\n", got)

	out := h.out.String()
	assert.Contains(t, out, "Connected to database server at localhost:3306!")
	assert.Contains(t, out, "Current line will be executed: SELECT 1;")
	assert.Contains(t, out, "Connected to localhost:3306 as root")
	assert.NotContains(t, out, "pw@")
	assert.Contains(t, out, "Disconnected from database server!")
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestShellLineOnBlankLineWarns(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	_, err := h.shell.Handle(ctx, `\line 0`)
	require.NoError(t, err)

	assert.Equal(t, []string{sqlexec.NoQueryOnLine}, h.collector.Warnings)
	assert.Empty(t, h.collector.Results)
}

func TestShellLineDeclined(t *testing.T) {
	h := newHarness(t, "n\n")
	ctx := context.Background()

	// Not connected: the batch result is an error but the buffer still fills.
	_, err := h.shell.Handle(ctx, "SELECT 1;")
	require.NoError(t, err)
	require.Len(t, h.collector.Results, 1)
	assert.Contains(t, h.collector.Results[0].Error, "not connected")

	_, err = h.shell.Handle(ctx, `\line 3`)
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Skipped.")
	assert.Len(t, h.collector.Results, 1)
}

func TestShellCommandsWithoutConnection(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	quit, err := h.shell.Handle(ctx, `\disconnect`)
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, h.out.String(), "Not connected.")

	_, err = h.shell.Handle(ctx, `\bogus`)
	assert.Error(t, err)

	_, err = h.shell.Handle(ctx, `\run`)
	assert.Error(t, err)

	_, err = h.shell.Handle(ctx, `\line abc`)
	assert.Error(t, err)

	quit, err = h.shell.Handle(ctx, `\q`)
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestShellRunFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "q.sql")
	require.NoError(t, buffer.Export(p, "SELECT 1;\nSELEC 2;\nSELECT 3;\n"))

	h := newHarness(t, "")
	ctx := context.Background()
	h.mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	h.mock.ExpectQuery(`SELEC 2`).WillReturnError(errors.New("syntax error"))
	h.mock.ExpectQuery(`SELECT 3`).WillReturnRows(sqlmock.NewRows([]string{"3"}).AddRow(3))

	_, err := h.shell.Handle(ctx, `\connect mysql://root:pw@localhost`)
	require.NoError(t, err)
	_, err = h.shell.Handle(ctx, `\run `+p)
	require.NoError(t, err)

	require.Len(t, h.collector.Results, 3)
	assert.True(t, h.collector.Results[1].Failed())
	assert.False(t, h.collector.Results[2].Failed())
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestShellPrintShowsOffsets(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	_, _ = h.shell.Handle(ctx, "SELECT 1")
	_, _ = h.shell.Handle(ctx, "FROM dual")
	_, err := h.shell.Handle(ctx, `\print`)
	require.NoError(t, err)

	assert.Contains(t, h.out.String(), "     0  SELECT 1\n")
	assert.Contains(t, h.out.String(), "     9  FROM dual\n")
}

func TestShellPrintCountsCharacters(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	_, _ = h.shell.Handle(ctx, "SELECT 'é'")
	_, _ = h.shell.Handle(ctx, "FROM dual")
	_, err := h.shell.Handle(ctx, `\print`)
	require.NoError(t, err)

	assert.Contains(t, h.out.String(), "    11  FROM dual\n")
}

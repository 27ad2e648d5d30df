// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package bridge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"sync/atomic"
	"testing"

	"sqlbench/cli/internal/bridge/grpcclient"
	"sqlbench/cli/internal/bridge/grpcserver"
	"sqlbench/cli/internal/dsn"
	apperr "sqlbench/cli/internal/errors"
	"sqlbench/cli/internal/session"
	"sqlbench/cli/internal/sqlexec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

// echoConn answers "SELECT <x>" with a single row and fails on "BROKEN".
// "SELECT nan" and "SELECT chan" return values JSON has no form for.
type echoConn struct {
	id     int64
	closed atomic.Bool
}

func (c *echoConn) Query(_ context.Context, stmt string) (*session.Rows, error) {
	if strings.Contains(stmt, "BROKEN") {
		return nil, errors.New("You have an error in your SQL syntax")
	}
	switch strings.TrimSuffix(stmt, ";") {
	case "SELECT nan":
		return &session.Rows{Columns: []string{"f"}, Values: [][]any{{math.NaN(), math.Inf(-1)}}}, nil
	case "SELECT chan":
		return &session.Rows{Columns: []string{"c"}, Values: [][]any{{make(chan int)}}}, nil
	}
	if strings.TrimSuffix(stmt, ";") == "SELECT conn" {
		return &session.Rows{Columns: []string{"conn"}, Values: [][]any{{c.id}}}, nil
	}
	if v, ok := strings.CutPrefix(stmt, "SELECT "); ok {
		return &session.Rows{Columns: []string{"v"}, Values: [][]any{{strings.TrimSuffix(v, ";")}}}, nil
	}
	return &session.Rows{RowsAffected: 1}, nil
}

func (c *echoConn) Close(context.Context) error {
	c.closed.Store(true)
	return nil
}

type fixture struct {
	lis   *bufconn.Listener
	dials atomic.Int64
}

func startServer(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{lis: bufconn.Listen(1 << 20)}
	dial := func(_ context.Context, info *dsn.DSNInfo) (session.Conn, error) {
		if info.User == "denied" {
			return nil, errors.New("Access denied for user 'denied'@'localhost'")
		}
		return &echoConn{id: f.dials.Add(1)}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := grpcserver.New(dial, nil, nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, f.lis) }()

	t.Cleanup(func() {
		cancel()
		<-done
	})
	return f
}

func (f *fixture) client(t *testing.T, name string) *grpcclient.Client {
	t.Helper()
	c, err := grpcclient.Dial("passthrough:///bufnet", name,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return f.lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func creds(t *testing.T, user string) *dsn.DSNInfo {
	t.Helper()
	info, err := dsn.FromCredentials(dsn.DBTypeMySQL, "localhost", "", user, "pw", "")
	require.NoError(t, err)
	return info
}

func collect(t *testing.T, w Workbench, text string) []sqlexec.Result {
	t.Helper()
	var out []sqlexec.Result
	for r, err := range w.Execute(context.Background(), text) {
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestRemoteExecuteStreamsResultsInOrder(t *testing.T) {
	f := startServer(t)
	c := f.client(t, "s1")
	ctx := context.Background()

	require.NoError(t, c.Connect(ctx, creds(t, "root")))

	results := collect(t, c, "SELECT 1; BROKEN; SELECT 3;")
	require.Len(t, results, 3)
	assert.Equal(t, "SELECT 1", results[0].Statement)
	assert.Equal(t, [][]any{{"1"}}, results[0].Rows)
	assert.True(t, results[1].Failed())
	assert.Equal(t, "Failed to execute query: BROKEN\nYou have an error in your SQL syntax", results[1].Error)
	assert.Equal(t, [][]any{{"3"}}, results[2].Rows)

	require.NoError(t, c.Disconnect(ctx))
	results = collect(t, c, "SELECT 1")
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "not connected")
}

func TestRemoteExecuteKeepsGoingPastUnencodableValues(t *testing.T) {
	f := startServer(t)
	c := f.client(t, "odd")
	ctx := context.Background()

	require.NoError(t, c.Connect(ctx, creds(t, "root")))

	results := collect(t, c, "SELECT nan; SELECT chan; SELECT 3;")
	require.Len(t, results, 3)
	assert.Equal(t, [][]any{{"NaN", "-Inf"}}, results[0].Rows)
	assert.True(t, results[1].Failed())
	assert.Contains(t, results[1].Error, "Failed to display result of query: SELECT chan")
	assert.Equal(t, [][]any{{"3"}}, results[2].Rows)
}

func TestRemoteSessionsAreIndependent(t *testing.T) {
	f := startServer(t)
	a := f.client(t, "a")
	b := f.client(t, "b")
	ctx := context.Background()

	require.NoError(t, a.Connect(ctx, creds(t, "root")))
	require.NoError(t, b.Connect(ctx, creds(t, "root")))

	ra := collect(t, a, "SELECT conn")
	rb := collect(t, b, "SELECT conn")
	require.Len(t, ra, 1)
	require.Len(t, rb, 1)
	assert.NotEqual(t, ra[0].Rows, rb[0].Rows)

	// Disconnecting one session leaves the other connected.
	require.NoError(t, a.Disconnect(ctx))
	rb = collect(t, b, "SELECT 7")
	assert.False(t, rb[0].Failed())
}

func TestRemoteConnectFailure(t *testing.T) {
	f := startServer(t)
	c := f.client(t, "s1")

	err := c.Connect(context.Background(), creds(t, "denied"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConnectionFailed))
	assert.Contains(t, err.Error(), "Access denied")
}

func TestRemoteExecuteLine(t *testing.T) {
	f := startServer(t)
	c := f.client(t, "s1")
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx, creds(t, "root")))

	const text = "SELECT 1;\nSELECT 2;\n"

	res, err := c.ExecuteLine(ctx, text, 12, func(stmt string) (bool, error) {
		assert.Equal(t, "SELECT 2;", stmt)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2;", res.Statement)
	assert.Equal(t, [][]any{{"2"}}, res.Rows)

	_, err = c.ExecuteLine(ctx, text, len(text), nil)
	var w *sqlexec.Warning
	require.ErrorAs(t, err, &w)
	assert.Equal(t, sqlexec.NoQueryOnLine, w.Message)

	_, err = c.ExecuteLine(ctx, text, 0, func(string) (bool, error) { return false, nil })
	assert.ErrorIs(t, err, sqlexec.ErrDeclined)
}

func TestLocalWorkbench(t *testing.T) {
	conn := &echoConn{id: 1}
	dial := func(context.Context, *dsn.DSNInfo) (session.Conn, error) { return conn, nil }
	w := NewLocal(sqlexec.New(session.NewManager(dial, nil)))
	ctx := context.Background()

	require.NoError(t, w.Connect(ctx, creds(t, "root")))

	results := collect(t, w, "SELECT a; ; SELECT b;")
	require.Len(t, results, 2)
	assert.Equal(t, "SELECT b", results[1].Statement)

	res, err := w.ExecuteLine(ctx, "x\nSELECT c;", 4, nil)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint([][]any{{"c"}}), fmt.Sprint(res.Rows))

	require.NoError(t, w.Close())
	assert.True(t, conn.closed.Load())
}

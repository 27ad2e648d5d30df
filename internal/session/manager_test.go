// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"errors"
	"testing"

	apperr "sqlbench/cli/internal/errors"
	"sqlbench/cli/internal/dsn"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	name   string
	closed bool
}

func (f *fakeConn) Query(context.Context, string) (*Rows, error) { return &Rows{}, nil }

func (f *fakeConn) Close(context.Context) error {
	f.closed = true
	return nil
}

// scriptedDialer hands out conns in order, or fails when the next entry is nil.
func scriptedDialer(conns ...*fakeConn) Dialer {
	i := 0
	return func(context.Context, *dsn.DSNInfo) (Conn, error) {
		c := conns[i]
		i++
		if c == nil {
			return nil, errors.New("Access denied for user 'root'@'localhost'")
		}
		return c, nil
	}
}

func creds(t *testing.T) *dsn.DSNInfo {
	t.Helper()
	info, err := dsn.FromCredentials(dsn.DBTypeMySQL, "localhost", "", "root", "secret", "")
	require.NoError(t, err)
	return info
}

func TestDisconnectWithoutConnectionIsNoop(t *testing.T) {
	m := NewManager(scriptedDialer(), nil)
	assert.NoError(t, m.Disconnect(context.Background()))
	assert.NoError(t, m.Disconnect(context.Background()))
	assert.False(t, m.Connected())
}

func TestConnectAndDisconnect(t *testing.T) {
	ctx := context.Background()
	first := &fakeConn{name: "first"}
	m := NewManager(scriptedDialer(first), nil)

	conn, err := m.Connect(ctx, creds(t))
	require.NoError(t, err)
	assert.Same(t, first, conn)

	active, ok := m.Active()
	require.True(t, ok)
	assert.Same(t, first, active)

	info, ok := m.Info()
	require.True(t, ok)
	assert.Equal(t, "root", info.User)

	require.NoError(t, m.Disconnect(ctx))
	assert.True(t, first.closed)
	_, ok = m.Active()
	assert.False(t, ok)
}

func TestConnectFailureKeepsPreviousConnection(t *testing.T) {
	ctx := context.Background()
	first := &fakeConn{name: "first"}
	m := NewManager(scriptedDialer(first, nil), nil)

	_, err := m.Connect(ctx, creds(t))
	require.NoError(t, err)

	_, err = m.Connect(ctx, creds(t))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConnectionFailed))
	assert.Contains(t, err.Error(), "Access denied")

	active, ok := m.Active()
	require.True(t, ok)
	assert.Same(t, first, active)
	assert.False(t, first.closed)
}

func TestConnectFailureWithoutPreviousConnection(t *testing.T) {
	m := NewManager(scriptedDialer(nil), nil)

	_, err := m.Connect(context.Background(), creds(t))
	require.Error(t, err)
	assert.False(t, m.Connected())
}

func TestReconnectClosesPreviousConnection(t *testing.T) {
	ctx := context.Background()
	first := &fakeConn{name: "first"}
	second := &fakeConn{name: "second"}
	m := NewManager(scriptedDialer(first, second), nil)

	_, err := m.Connect(ctx, creds(t))
	require.NoError(t, err)
	_, err = m.Connect(ctx, creds(t))
	require.NoError(t, err)

	assert.True(t, first.closed)
	assert.False(t, second.closed)
	active, _ := m.Active()
	assert.Same(t, second, active)
}

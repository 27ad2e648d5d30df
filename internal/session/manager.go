// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"

	apperr "sqlbench/cli/internal/errors"
	"sqlbench/cli/internal/dsn"
	"sqlbench/cli/internal/logging"

	"github.com/pterm/pterm"
)

// Manager holds at most one active connection.
// It is not safe for concurrent use; callers that share a Manager serialize access.
type Manager struct {
	dial   Dialer
	logger *pterm.Logger

	conn Conn
	info *dsn.DSNInfo
}

// NewManager creates a Manager. A nil dialer means DefaultDialer and a nil
// logger discards log output.
func NewManager(dial Dialer, logger *pterm.Logger) *Manager {
	if dial == nil {
		dial = DefaultDialer
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{dial: dial, logger: logger}
}

// Connect opens a connection and makes it the active one.
//
// On failure the previous connection, if any, stays active and the returned
// error has kind ConnectionFailed with the driver message attached. On success
// a previous connection is closed after the new one is established.
func (m *Manager) Connect(ctx context.Context, info *dsn.DSNInfo) (Conn, error) {
	m.logger.Debug("connecting", m.logger.Args("driver", string(info.Type), "address", info.Address(), "user", info.User))

	conn, err := m.dial(ctx, info)
	if err != nil {
		m.logger.Debug("connect failed", m.logger.Args("error", logging.Mask(err.Error())))
		return nil, apperr.Wrap(apperr.ConnectionFailed, "failed to connect to database server at "+info.Address(), err)
	}

	if m.conn != nil {
		if cerr := m.conn.Close(ctx); cerr != nil {
			m.logger.Warn("closing previous connection failed", m.logger.Args("error", cerr.Error()))
		}
	}

	m.conn = conn
	m.info = info
	m.logger.Info("connected", m.logger.Args("address", info.Address()))
	return conn, nil
}

// Disconnect closes the active connection. Without one it does nothing.
func (m *Manager) Disconnect(ctx context.Context) error {
	if m.conn == nil {
		return nil
	}
	conn := m.conn
	m.conn = nil
	m.info = nil

	if err := conn.Close(ctx); err != nil {
		return err
	}
	m.logger.Info("disconnected")
	return nil
}

// Active returns the current connection.
func (m *Manager) Active() (Conn, bool) {
	return m.conn, m.conn != nil
}

// Info returns the credentials of the active connection.
func (m *Manager) Info() (*dsn.DSNInfo, bool) {
	return m.info, m.info != nil
}

// Connected reports whether a connection is active.
func (m *Manager) Connected() bool {
	return m.conn != nil
}

// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"sqlbench/cli/internal/bridge"
	"sqlbench/cli/internal/config"
	"sqlbench/cli/internal/dsn"
	"sqlbench/cli/internal/keychain"
	"sqlbench/cli/internal/logging"
	"sqlbench/cli/internal/render"
	"sqlbench/cli/internal/session"
	"sqlbench/cli/internal/sqlexec"
	"sqlbench/cli/internal/statement"
)

// errNoConnection is returned when no saved or environment credentials exist.
var errNoConnection = errors.New("no database connection configured, run 'sqlbench connect' first")

// savedCredentials returns the credentials to use for local execution and
// where they came from: SQLBENCH_DSN / DATABASE_URL first, then the keychain.
func savedCredentials() (*dsn.DSNInfo, string, error) {
	if raw, name := config.EnvDSN(); raw != "" {
		info, err := dsn.ParseInfo(raw)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", name, err)
		}
		return info, name + " environment variable", nil
	}

	km, err := keychain.GetManager()
	if err != nil {
		return nil, "", err
	}
	raw, err := km.LoadConnection()
	if errors.Is(err, keychain.ErrNotFound) {
		return nil, "", errNoConnection
	}
	if err != nil {
		return nil, "", err
	}
	info, err := dsn.ParseInfo(raw)
	if err != nil {
		return nil, "", err
	}
	return info, "OS keychain", nil
}

// newExecutor builds an executor over a fresh session using the configured splitter.
func newExecutor() *sqlexec.Executor {
	return sqlexec.New(
		session.NewManager(session.DefaultDialer, logger),
		sqlexec.WithSplitter(statement.ForName(cfg.Splitter)),
		sqlexec.WithLogger(logger),
	)
}

// openWorkbench returns a connected workbench. With --remote it attaches to
// the named session of a running server, which must already be connected.
func openWorkbench(ctx context.Context) (bridge.Workbench, error) {
	if remoteAddr != "" {
		return openRemote()
	}

	info, source, err := savedCredentials()
	if err != nil {
		return nil, err
	}
	logger.Debug("using saved connection", logger.Args("source", source, "dsn", logging.Mask(info.String())))

	w := bridge.NewLocal(newExecutor())
	if err := w.Connect(ctx, info); err != nil {
		logging.PresentConnectionError(info.Address(), errors.Unwrap(err))
		return nil, err
	}
	return w, nil
}

// openRemote attaches to the --session of the server at --remote.
func openRemote() (bridge.Workbench, error) {
	logger.Debug("using remote workbench", logger.Args("addr", remoteAddr, "session", remoteSession))
	return bridge.Remote(remoteAddr, remoteSession, cfg.Splitter == config.SplitterLexical)
}

// newSurface returns the configured result surface on stdout, with a tally.
func newSurface() (*render.Tally, error) {
	s, err := render.New(cfg.Output, os.Stdout)
	if err != nil {
		return nil, err
	}
	return render.NewTally(s), nil
}

// runText executes text on w and displays every result as it arrives.
func runText(ctx context.Context, w bridge.Workbench, text string) error {
	surface, err := newSurface()
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		surface.Warning("Nothing to execute.")
		return nil
	}

	wait := newWaitIndicator()
	wait.Start()
	for r, err := range w.Execute(ctx, text) {
		wait.Stop()
		if err != nil {
			return err
		}
		surface.Result(r)
		wait.Start()
	}
	wait.Stop()

	logger.Debug("run finished", logger.Args("statements", surface.Results, "failed", surface.Failures))
	if surface.Failures > 0 {
		return errStatementsFailed
	}
	return nil
}

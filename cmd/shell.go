// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"os"

	"sqlbench/cli/internal/dsn"
	"sqlbench/cli/internal/logging"
	"sqlbench/cli/internal/shell"

	"github.com/spf13/cobra"
)

// shellCmd starts the interactive workbench.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive SQL workbench",
	Long: `The shell command opens an interactive workbench on one session. Type SQL and
end a line with ';' to run what was entered; type \help for the commands that
connect, run files or lines, and save the buffer to a file.

The saved connection is opened on start when there is one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		surface, err := newSurface()
		if err != nil {
			return err
		}
		exec := newExecutor()

		if info, source, err := savedCredentials(); err == nil {
			logger.Debug("opening saved connection", logger.Args("source", source))
			if _, err := exec.Session().Connect(ctx, info); err != nil {
				logging.PresentConnectionError(info.Address(), errors.Unwrap(err))
			}
		} else if !errors.Is(err, errNoConnection) {
			logger.Warn("saved connection unavailable", logger.Args("error", err))
		}

		sh := shell.New(shell.Options{
			In:          os.Stdin,
			Out:         os.Stdout,
			Executor:    exec,
			Surface:     surface,
			Defaults:    cfg.DB,
			ConfirmLine: cfg.ConfirmLine,
			OnConnect: func(info *dsn.DSNInfo) {
				if err := saveCredentials(info); err != nil {
					logger.Warn("could not save connection", logger.Args("error", err))
				}
			},
			Logger: logger,
		})
		return sh.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

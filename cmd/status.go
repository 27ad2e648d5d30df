// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"

	"sqlbench/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCheck bool

// statusCmd shows which connection later commands will use, with the
// password masked.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved connection and settings",
	Long: `The status command displays the connection that run-file, run-line and shell
will use, with the password masked, and where it comes from: the SQLBENCH_DSN or
DATABASE_URL environment variable, or the OS keychain.

Use --check to also open a session and report whether the server is reachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, source, err := savedCredentials()
		if errors.Is(err, errNoConnection) {
			pterm.Println("⚠️  No database connection configured")
			pterm.Println("   Please run: sqlbench connect")
			return nil
		}
		if err != nil {
			return err
		}

		pterm.Println("Using connection from " + source)
		pterm.Println()
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithPadding(1).
			Println(fmt.Sprintf("%s\n\nDriver:   %s\nServer:   %s\nSplitter: %s\nOutput:   %s",
				logging.Mask(info.String()), info.Type, info.Address(), cfg.Splitter, cfg.Output))
		pterm.Println()

		if statusCheck {
			w, err := openWorkbench(cmd.Context())
			if err != nil {
				return err
			}
			_ = w.Close()
			pterm.Println("✅ Server is reachable")
			pterm.Println()
		}

		pterm.Println("To update this connection, run: sqlbench connect")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "Open a session to verify the server is reachable")
}

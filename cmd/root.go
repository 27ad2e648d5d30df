// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for sqlbench, a workbench for
// running SQL against a locally running MySQL or PostgreSQL server. It
// implements the subcommands with the Cobra CLI framework and renders results
// with pterm.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"sqlbench/cli/internal/config"
	apperr "sqlbench/cli/internal/errors"
	"sqlbench/cli/internal/keychain"
	"sqlbench/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	showVersion   bool
	verbose       bool
	outputFormat  string
	lexicalSplit  bool
	remoteAddr    string
	remoteSession string

	// cfg and logger are ready once the root pre-run has executed.
	cfg    = config.Default()
	logger = logging.Discard()
)

// errStatementsFailed makes the process exit non-zero after a run in which
// some statement failed. The failures themselves were already displayed.
var errStatementsFailed = errors.New("one or more statements failed")

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sqlbench",
	Short: "A local SQL workbench for MySQL and PostgreSQL",
	Long: `sqlbench runs SQL text against a locally running database server and shows
the result of every statement: a table of rows, "Executed" for statements without
rows, or the error of a failing statement. A failing statement never stops the rest.

Start with 'sqlbench connect', then use 'run-file', 'run-line' or the interactive 'shell'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		if cmd.Flags().Changed("output") {
			cfg.Output = outputFormat
		}
		if lexicalSplit {
			cfg.Splitter = config.SplitterLexical
		}

		level := cfg.LogLevel
		if verbose || config.Verbose() {
			level = "debug"
		}
		logger = logging.New(level)
		keychain.SetLogger(logger)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("sqlbench %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application and sets the process exit code.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, errStatementsFailed):
	case apperr.Is(err, apperr.ConnectionFailed):
		// Already presented with hints by the command.
	default:
		fmt.Fprintln(os.Stderr, pterm.NewStyle(pterm.FgRed).Sprint(logging.PresentError("", err)))
	}
	os.Exit(1)
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", config.OutputTable, "Result format: table or json")
	rootCmd.PersistentFlags().BoolVar(&lexicalSplit, "lexical", false, "Do not split on ';' inside quotes and comments")
	rootCmd.PersistentFlags().StringVar(&remoteAddr, "remote", "", "Use the workbench served at this address (see 'sqlbench serve')")
	rootCmd.PersistentFlags().StringVar(&remoteSession, "session", "default", "Session name on the remote workbench")
}

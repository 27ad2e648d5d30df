// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"sqlbench/cli/internal/buffer"
	"sqlbench/cli/internal/sqlexec"

	"github.com/spf13/cobra"
)

var runLineYes bool

// runFileCmd executes every statement of a file.
var runFileCmd = &cobra.Command{
	Use:   "run-file <path>",
	Short: "Execute every statement in a SQL file",
	Long: `The run-file command splits the file on ';' and executes the statements one by
one on a single session, in order. Each statement's outcome is shown as soon as it
completes: its rows, "Executed", or the error message. A failing statement does
not stop the ones after it; the command exits with status 1 if any failed.

Use --lexical to keep ';' inside quotes and comments from splitting a statement.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := buffer.Load(args[0])
		if err != nil {
			return err
		}

		w, err := openWorkbench(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		return runText(cmd.Context(), w, text)
	},
}

// runLineCmd executes the line that contains a character offset.
var runLineCmd = &cobra.Command{
	Use:   "run-line <path> <offset>",
	Short: "Execute the line at a character offset of a SQL file",
	Long: `The run-line command finds the line of the file that contains the given
character offset (the cursor position) and executes it as one statement, without
splitting. Before running, it shows the statement and asks for confirmation
unless --yes is given or confirm_line is disabled in the config file.

A blank line produces a warning and nothing is executed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid offset %q: must be a number", args[1])
		}
		text, err := buffer.Load(args[0])
		if err != nil {
			return err
		}
		surface, err := newSurface()
		if err != nil {
			return err
		}

		w, err := openWorkbench(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		var confirm sqlexec.ConfirmFunc
		if !runLineYes && cfg.ConfirmLine {
			confirm = confirmLine
		}

		r, err := w.ExecuteLine(cmd.Context(), text, offset, confirm)
		var warning *sqlexec.Warning
		switch {
		case errors.As(err, &warning):
			surface.Warning(warning.Message)
			return nil
		case errors.Is(err, sqlexec.ErrDeclined):
			fmt.Fprintln(os.Stderr, "Skipped.")
			return nil
		case err != nil:
			return err
		}

		surface.Result(r)
		if r.Failed() {
			return errStatementsFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runFileCmd)
	rootCmd.AddCommand(runLineCmd)
	runLineCmd.Flags().BoolVarP(&runLineYes, "yes", "y", false, "Execute without asking for confirmation")
}

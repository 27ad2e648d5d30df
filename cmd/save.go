// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"os"

	"sqlbench/cli/internal/buffer"

	"github.com/spf13/cobra"
)

// saveCmd writes standard input to a file.
var saveCmd = &cobra.Command{
	Use:   "save <path>",
	Short: "Save SQL text from standard input to a file",
	Long: `The save command writes everything read from standard input to the given path,
creating parent directories as needed and replacing an existing file.

Example:
  pbpaste | sqlbench save queries/report.sql`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read standard input: %w", err)
		}
		if err := buffer.Export(args[0], string(text)); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "File saved successfully.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

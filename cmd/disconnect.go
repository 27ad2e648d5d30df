// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"sqlbench/cli/internal/keychain"

	"github.com/spf13/cobra"
)

// disconnectCmd ends the session. Locally that means forgetting the saved
// credentials; with --remote it closes the server-side session.
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Close the session and forget the saved connection",
	Long: `The disconnect command removes the saved connection from the OS keychain, so
later commands no longer open a session until 'sqlbench connect' runs again.
Connection defaults in the config file are kept.

With --remote it closes the session named by --session on the workbench server.
Disconnecting when nothing is connected is not an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if remoteAddr != "" {
			w, err := openRemote()
			if err != nil {
				return err
			}
			defer w.Close()
			if err := w.Disconnect(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("✅ Disconnected from database server!")
			return nil
		}

		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.ClearConnection(); err != nil {
			return err
		}
		fmt.Println("✅ Disconnected from database server!")
		fmt.Println("   Saved connection removed from the OS keychain")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
}

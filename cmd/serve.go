// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"sqlbench/cli/internal/bridge/grpcserver"
	"sqlbench/cli/internal/session"
	"sqlbench/cli/internal/statement"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var serveAddr string

// serveCmd keeps sessions open across invocations for editors and scripts.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workbench over gRPC",
	Long: `The serve command listens for workbench clients and keeps one database session
per session name open until it is disconnected or the server stops. Other
sqlbench commands use it when given --remote <addr>.

The server only accepts plaintext connections and is meant for localhost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if !cmd.Flags().Changed("addr") {
			addr = cfg.Serve.Addr
		}

		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pterm.Success.Printfln("Workbench listening on %s", lis.Addr())
		srv := grpcserver.New(session.DefaultDialer, statement.ForName(cfg.Splitter), logger)
		return srv.Serve(ctx, lis)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:7433", "Address to listen on")
}

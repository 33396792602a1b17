package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/hive/internal/mcptools"
	"github.com/dusk-indust/hive/internal/telemetry"
)

// shutdownTimeout bounds how long serve waits for running projects on exit.
const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		transport string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the hive MCP tools over stdio or streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := root.cfg, root.logger
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					logger.Warn("telemetry shutdown failed", "error", err)
				}
			}()

			a, err := newApp(cfg, nil, logger)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := a.shutdown(shutdownCtx); err != nil {
					logger.Warn("shutdown incomplete", "error", err)
				}
			}()

			server := mcptools.NewHiveMCPServer(mcptools.NewHiveService(a.runner, a.hive, a.store))

			switch transport {
			case "stdio":
				logger.Info("serving MCP on stdio", "participants", a.hive.Members())
				return mcptools.RunStdio(ctx, server)
			case "http":
				logger.Info("serving MCP over HTTP", "addr", cfg.Server.Addr, "participants", a.hive.Members())
				return mcptools.RunHTTP(ctx, server, cfg.Server.Addr)
			default:
				return fmt.Errorf("unknown transport %q (want stdio or http)", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "MCP transport: stdio or http")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for the http transport (overrides config)")
	return cmd
}

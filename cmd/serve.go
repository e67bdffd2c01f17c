package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/contentduet/duet/internal/agent"
	"github.com/contentduet/duet/internal/config"
	"github.com/contentduet/duet/internal/gateway"
	"github.com/contentduet/duet/internal/logging"
	"github.com/contentduet/duet/internal/mcp"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI and API gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			log := logging.New("duet", cfg.Logging.Level)
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var extraTools []agent.Tool
			if len(cfg.MCP) > 0 {
				mcpClient := mcp.NewClient(log.Named("mcp"))
				defer mcpClient.Close()
				for _, server := range cfg.MCP {
					if err := mcpClient.Connect(ctx, server); err != nil {
						log.Warn("MCP server unavailable, continuing without it",
							"name", server.Name, "error", err)
					}
				}
				extraTools = mcpClient.Tools()
			}

			srv := gateway.NewServer(cfg, gateway.Options{
				ExtraTools: extraTools,
				Logger:     log.Named("gateway"),
			})
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

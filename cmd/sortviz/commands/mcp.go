package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sortviz/pkg/mcp"
	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the sorting engine as tools that AI agents can
discover and invoke:
  - sort_algorithms: List the implemented algorithms
  - sort_run: Sort an array with one algorithm and report its counters`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			// Stdout carries the protocol, so logs are JSON on stderr.
			cfg.Logging.Format = "json"
			if debug {
				cfg.Logging.Level = slog.LevelDebug.String()
			}

			tel, err := initTelemetry(cfg, observability.ModeMCP, false)
			if err != nil {
				return err
			}
			defer tel.shutdown()

			red, redErr := observability.NewREDMetrics(tel.Meter)
			if redErr != nil {
				return redErr
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:      tel.Logger,
				Metrics:     red,
				SortMetrics: tel.Sort,
				Tracer:      tel.Tracer,
			})

			ctx, stop := interruptContext(cobraCmd.Context())
			defer stop()

			return srv.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}

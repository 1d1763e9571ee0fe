// Package commands implements the sortviz CLI commands.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sortviz/pkg/config"
	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
	"github.com/Sumatoshi-tech/sortviz/pkg/version"
)

const configFlag = "config"

// NewRootCommand builds the sortviz command tree without the version command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sortviz",
		Short: "sortviz - Instrumented sorting algorithm visualizer",
		Long: `sortviz animates bubble, selection, insertion, merge and quick sort step by step
and reports their comparison and swap counts.

Commands:
  run       Animate one algorithm in the terminal
  compare   Run every algorithm on the same array and tabulate the counters
  plot      Write an HTML report of one run
  serve     Serve the live visualizer protocol over websockets
  mcp       Start the MCP server for AI agents
  config    Print the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(configFlag, "", "Path to a sortviz.yaml config file")

	rootCmd.AddCommand(
		NewRunCommand(),
		NewCompareCommand(),
		NewPlotCommand(),
		NewServeCommand(),
		NewMCPCommand(),
		NewConfigCommand(),
	)

	return rootCmd
}

// loadConfig reads the configuration named by the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return nil, fmt.Errorf("read --%s: %w", configFlag, err)
	}

	return config.LoadConfig(path)
}

// observabilityConfig maps the loaded configuration onto the telemetry setup
// for mode. The OTEL_EXPORTER_OTLP_* environment wins over the file.
func observabilityConfig(cfg *config.Config, mode observability.AppMode) (observability.Config, error) {
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	obs := observability.DefaultConfig()
	obs.ServiceName = cfg.Observability.ServiceName
	obs.ServiceVersion = version.Version
	obs.Environment = cfg.Observability.Environment
	obs.Mode = mode
	obs.OTLPEndpoint = envOr("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Observability.OTLPEndpoint)
	obs.OTLPHeaders = observability.ParseOTLPHeaders(envOr("OTEL_EXPORTER_OTLP_HEADERS", cfg.Observability.OTLPHeaders))
	obs.OTLPInsecure = cfg.Observability.OTLPInsecure || os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	obs.SampleRatio = cfg.Observability.SampleRatio
	obs.LogLevel = level
	obs.LogJSON = cfg.Logging.Format == "json"
	obs.ShutdownTimeoutSec = int(cfg.Observability.ShutdownTimeout / time.Second)

	return obs, nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}

	return fallback
}

// telemetry bundles the providers and the sort instruments of one command.
type telemetry struct {
	observability.Providers

	Sort *observability.SortMetrics
}

func initTelemetry(cfg *config.Config, mode observability.AppMode, prometheus bool) (*telemetry, error) {
	obsCfg, err := observabilityConfig(cfg, mode)
	if err != nil {
		return nil, err
	}

	obsCfg.Prometheus = prometheus

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	sortMetrics, err := observability.NewSortMetrics(providers.Meter)
	if err != nil {
		_ = providers.Shutdown(context.Background())

		return nil, fmt.Errorf("init sort metrics: %w", err)
	}

	return &telemetry{Providers: providers, Sort: sortMetrics}, nil
}

func (t *telemetry) shutdown() {
	err := t.Shutdown(context.Background())
	if err != nil {
		t.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// interruptContext is cancelled on SIGINT or SIGTERM.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

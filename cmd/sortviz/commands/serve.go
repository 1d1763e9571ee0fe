package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sortviz/pkg/config"
	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
	"github.com/Sumatoshi-tech/sortviz/pkg/server"
)

type serveCommand struct {
	host string
	port int
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	sc := &serveCommand{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live visualizer protocol over websockets",
		Long: `Start an HTTP server with:
  GET /ws              websocket: one sorting session per connection
  GET /api/algorithms  algorithm catalogue
  GET /healthz         liveness and open session count
  GET /metrics         Prometheus metrics

Runs until interrupted, then stops every running sort and closes open sockets.`,
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	cmd.Flags().StringVar(&sc.host, "host", config.DefaultHost, "Listen host")
	cmd.Flags().IntVarP(&sc.port, "port", "p", config.DefaultPort, "Listen port")

	return cmd
}

func (sc *serveCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("host") {
		cfg.Server.Host = sc.host
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = sc.port
	}

	tel, err := initTelemetry(cfg, observability.ModeServe, true)
	if err != nil {
		return err
	}
	defer tel.shutdown()

	red, err := observability.NewREDMetrics(tel.Meter)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Session:        sessionOptions(cfg.Visualizer, tel),
		MetricsHandler: tel.MetricsHandler,
		Logger:         tel.Logger,
		Tracer:         tel.Tracer,
		RED:            red,
	})
	if err != nil {
		return err
	}

	ctx, stop := interruptContext(cmd.Context())
	defer stop()

	return srv.ListenAndServe(ctx, cfg.Server.Addr(), server.Timeouts{
		Read:  cfg.Server.ReadTimeout,
		Write: cfg.Server.WriteTimeout,
		Idle:  cfg.Server.IdleTimeout,
	})
}

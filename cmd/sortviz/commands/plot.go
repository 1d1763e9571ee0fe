package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
	"github.com/Sumatoshi-tech/sortviz/pkg/render/plot"
	"github.com/Sumatoshi-tech/sortviz/pkg/render/terminal"
	"github.com/Sumatoshi-tech/sortviz/pkg/session"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

type plotCommand struct {
	flags  visualizerFlags
	output string
}

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	pc := &plotCommand{}

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Write an HTML report of one run",
		Long: `Sort a random array with one algorithm without pacing, recording every
instrumentation event, and write an HTML page with the array before and after,
the cumulative comparison and swap counters, and the activity per index.`,
		Args: cobra.NoArgs,
		RunE: pc.run,
	}

	pc.flags.register(cmd, true, false)
	cmd.Flags().StringVarP(&pc.output, "output", "o", "", "Report file (default sortviz-<algorithm>.html)")

	return cmd
}

func (pc *plotCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	pc.flags.apply(cmd, &cfg.Visualizer)

	tel, err := initTelemetry(cfg, observability.ModeCLI, false)
	if err != nil {
		return err
	}
	defer tel.shutdown()

	opts := sessionOptions(cfg.Visualizer, tel)
	opts.Pacer = sorting.NoPause{}

	sess, err := session.New(opts)
	if err != nil {
		return err
	}

	snap := sess.Snapshot()
	recorder := &sorting.Recorder{}

	res, err := sess.Start(cmd.Context(), recorder)
	if err != nil {
		return err
	}

	output := pc.output
	if output == "" {
		output = fmt.Sprintf("sortviz-%s.html", snap.Algorithm)
	}

	err = writeReport(output, func(w io.Writer) error {
		return plot.Write(w, plot.RunReport(snap.Values, res, recorder.Events()))
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, terminal.Summary(res))
	fmt.Fprintf(out, "Report written to %s\n", output)

	return nil
}

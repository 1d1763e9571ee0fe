package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
	"github.com/Sumatoshi-tech/sortviz/pkg/render/plot"
	"github.com/Sumatoshi-tech/sortviz/pkg/render/terminal"
	"github.com/Sumatoshi-tech/sortviz/pkg/session"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

type compareCommand struct {
	flags  visualizerFlags
	output string
}

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	cc := &compareCommand{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every algorithm on the same array and tabulate the counters",
		Long: `Generate one random array and sort a copy of it with each algorithm without
pacing. Prints comparisons, swaps and elapsed time per algorithm, and writes an
HTML chart of the counters when --output is given.`,
		Args: cobra.NoArgs,
		RunE: cc.run,
	}

	cc.flags.register(cmd, false, false)
	cmd.Flags().StringVarP(&cc.output, "output", "o", "", "Write an HTML comparison report to this file")

	return cmd
}

func (cc *compareCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cc.flags.apply(cmd, &cfg.Visualizer)

	tel, err := initTelemetry(cfg, observability.ModeCLI, false)
	if err != nil {
		return err
	}
	defer tel.shutdown()

	sess, err := session.New(sessionOptions(cfg.Visualizer, tel))
	if err != nil {
		return err
	}

	values := sess.Snapshot().Values
	results := make([]sorting.Result, 0, len(sorting.Algorithms()))

	for _, alg := range sorting.Algorithms() {
		res, runErr := sorting.Run(alg, values, nil, sorting.Options{Pacer: sorting.NoPause{}})
		if runErr != nil {
			return runErr
		}

		recordRun(tel, cmd, res)

		results = append(results, res)
	}

	fmt.Fprintln(cmd.OutOrStdout(), terminal.SummaryTable(results))

	if cc.output == "" {
		return nil
	}

	err = writeReport(cc.output, func(w io.Writer) error {
		return plot.Write(w, plot.CompareReport(results))
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", cc.output)

	return nil
}

// writeReport creates path and fills it with render.
func writeReport(path string, render func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close report: %w", closeErr)
		}
	}()

	return render(f)
}

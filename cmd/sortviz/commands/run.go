package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
	"github.com/Sumatoshi-tech/sortviz/pkg/render/terminal"
	"github.com/Sumatoshi-tech/sortviz/pkg/session"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

type runCommand struct {
	flags   visualizerFlags
	noColor bool

	// pacer replaces real sleeps in tests.
	pacer sorting.Pacer
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return newRunCommand(nil)
}

func newRunCommand(pacer sorting.Pacer) *cobra.Command {
	rc := &runCommand{pacer: pacer}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Animate one sorting algorithm in the terminal",
		Long: `Generate a random array and animate the chosen algorithm as a bar chart.

Bars being compared, written, used as pivot and settled are colored. Press
Ctrl+C to stop the sort early; the partially sorted array stays on screen.`,
		Args: cobra.NoArgs,
		RunE: rc.run,
	}

	rc.flags.register(cmd, true, true)
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored bars")

	return cmd
}

func (rc *runCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rc.flags.apply(cmd, &cfg.Visualizer)

	tel, err := initTelemetry(cfg, observability.ModeCLI, false)
	if err != nil {
		return err
	}
	defer tel.shutdown()

	opts := sessionOptions(cfg.Visualizer, tel)
	opts.Pacer = rc.pacer

	sess, err := session.New(opts)
	if err != nil {
		return err
	}

	termCfg := terminal.NewConfig()
	termCfg.NoColor = rc.noColor || cfg.Visualizer.NoColor || color.NoColor

	snap := sess.Snapshot()
	out := cmd.OutOrStdout()

	animator := terminal.NewAnimator(out, termCfg, snap.Algorithm, snap.Values)
	animator.Draw()

	ctx, stop := interruptContext(cmd.Context())
	defer stop()

	res, err := sess.Start(ctx, animator)
	if err != nil {
		return err
	}

	if drawErr := animator.Err(); drawErr != nil {
		return drawErr
	}

	fmt.Fprintln(out, terminal.Summary(res))

	return nil
}

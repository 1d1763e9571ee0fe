package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sortviz/pkg/config"
	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
	"github.com/Sumatoshi-tech/sortviz/pkg/session"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

// visualizerFlags are the session flags shared by run, compare and plot.
// A flag only overrides the config file when it was set explicitly.
type visualizerFlags struct {
	algorithm string
	size      int
	speed     int
	seed      uint64
}

func (f *visualizerFlags) register(cmd *cobra.Command, withAlgorithm, withSpeed bool) {
	if withAlgorithm {
		cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", config.DefaultAlgorithm,
			"Sorting algorithm: bubble, selection, insertion, merge, quick")
	}

	if withSpeed {
		cmd.Flags().IntVarP(&f.speed, "speed", "s", config.DefaultSpeed, "Animation speed from 1 (slowest) to 100")
	}

	cmd.Flags().IntVarP(&f.size, "size", "n", config.DefaultSize, "Number of bars to sort (5 to 200)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Seed for the random array (0 = random)")
}

func (f *visualizerFlags) apply(cmd *cobra.Command, vis *config.VisualizerConfig) {
	if cmd.Flags().Changed("algorithm") {
		vis.Algorithm = f.algorithm
	}

	if cmd.Flags().Changed("size") {
		vis.Size = f.size
	}

	if cmd.Flags().Changed("speed") {
		vis.Speed = f.speed
	}

	if cmd.Flags().Changed("seed") {
		vis.Seed = f.seed
	}
}

// sessionOptions maps the visualizer config onto a session.
func sessionOptions(vis config.VisualizerConfig, tel *telemetry) session.Options {
	opts := session.Options{
		Algorithm:   sorting.Algorithm(vis.Algorithm),
		Size:        vis.Size,
		Speed:       vis.Speed,
		MinValue:    vis.MinValue,
		MaxValue:    vis.MaxValue,
		SettleDelay: vis.SettleDelay,
		Seed:        vis.Seed,
	}

	if tel != nil {
		opts.Logger = tel.Logger
		opts.Tracer = tel.Tracer
		opts.Metrics = tel.Sort
	}

	return opts
}

// recordRun reports a run that bypassed the session to the sort metrics.
func recordRun(tel *telemetry, cmd *cobra.Command, res sorting.Result) {
	tel.Sort.RecordRun(cmd.Context(), observability.RunRecord{
		Algorithm:   string(res.Algorithm),
		Size:        len(res.Values),
		Comparisons: res.Stats.Comparisons,
		Swaps:       res.Stats.Swaps,
		Elapsed:     res.Elapsed(),
		Cancelled:   res.Cancelled,
	})
}

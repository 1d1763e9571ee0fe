package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
	"github.com/Sumatoshi-tech/sortviz/pkg/session"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

// AlgorithmEntry is one element of the sort_algorithms result.
type AlgorithmEntry struct {
	ID sorting.Algorithm `json:"id"`
	sorting.Info
}

// RunOutput is the sort_run result.
type RunOutput struct {
	Algorithm sorting.Algorithm     `json:"algorithm"`
	Input     []int                 `json:"input"`
	Values    []int                 `json:"values"`
	Stats     sorting.StatsSnapshot `json:"stats"`
	Cancelled bool                  `json:"cancelled"`
	Events    []sorting.Event       `json:"events,omitempty"`
}

func handleAlgorithms(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	_ AlgorithmsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	algs := sorting.Algorithms()
	entries := make([]AlgorithmEntry, len(algs))

	for i, alg := range algs {
		entries[i] = AlgorithmEntry{ID: alg, Info: alg.Info()}
	}

	return jsonResult(entries)
}

// runner executes sort_run calls. Every call gets its own token, so calls
// never share state.
type runner struct {
	logger  *slog.Logger
	metrics *observability.SortMetrics
}

func (r *runner) handleRun(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input RunInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	alg, values, err := prepareRun(input)
	if err != nil {
		return errorResult(err)
	}

	out, err := r.run(ctx, alg, values, input.IncludeEvents)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(out)
}

// prepareRun validates input and returns the algorithm and the array to sort.
func prepareRun(input RunInput) (sorting.Algorithm, []int, error) {
	if input.Algorithm == "" {
		return "", nil, ErrEmptyAlgorithm
	}

	alg, err := sorting.ParseAlgorithm(input.Algorithm)
	if err != nil {
		return "", nil, err
	}

	if len(input.Values) > 0 && input.Size != 0 {
		return "", nil, ErrValuesAndSize
	}

	values := input.Values

	if len(values) == 0 {
		values, err = generate(input.Size, input.Seed)
		if err != nil {
			return "", nil, err
		}
	}

	if len(values) > MaxValues {
		return "", nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyValues, len(values), MaxValues)
	}

	for i, v := range values {
		if v <= 0 {
			return "", nil, fmt.Errorf("%w: values[%d] = %d", ErrNonPositiveValue, i, v)
		}
	}

	if input.IncludeEvents && len(values) > MaxTraceValues {
		return "", nil, fmt.Errorf("%w: %d values (max %d)", ErrTraceTooLarge, len(values), MaxTraceValues)
	}

	return alg, values, nil
}

func generate(size int, seed uint64) ([]int, error) {
	if size == 0 {
		size = session.DefaultSize
	}

	if size < session.MinSize || size > session.MaxSize {
		return nil, fmt.Errorf("%w: %d (want %d..%d)", session.ErrInvalidSize, size, session.MinSize, session.MaxSize)
	}

	if seed == 0 {
		seed = rand.Uint64()
	}

	rng := rand.New(rand.NewPCG(seed, seed))

	return sorting.Generate(rng, size, sorting.DefaultMinValue, sorting.DefaultMaxValue)
}

// run sorts values without pacing. A cancelled ctx stops the sort at the
// next step and is reported through RunOutput.Cancelled.
func (r *runner) run(ctx context.Context, alg sorting.Algorithm, values []int, withEvents bool) (RunOutput, error) {
	token := sorting.NewToken()

	detach := token.StopWhenDone(ctx)
	defer detach()

	if ctx.Err() != nil {
		token.Stop()
	}

	var recorder *sorting.Recorder

	opts := sorting.Options{Pacer: sorting.NoPause{}}
	if withEvents {
		recorder = &sorting.Recorder{}
		opts.Sink = recorder
	}

	ctx = observability.ContextWithRun(ctx, observability.RunInfo{Algorithm: string(alg), Size: len(values)})

	untrack := r.metrics.TrackActive(ctx, string(alg))
	res, err := sorting.Run(alg, values, token, opts)

	untrack()

	if err != nil {
		return RunOutput{}, fmt.Errorf("run %s: %w", alg, err)
	}

	r.metrics.RecordRun(ctx, observability.RunRecord{
		Algorithm:   string(alg),
		Size:        len(values),
		Comparisons: res.Stats.Comparisons,
		Swaps:       res.Stats.Swaps,
		Elapsed:     res.Elapsed(),
		Cancelled:   res.Cancelled,
	})

	r.logger.DebugContext(ctx, "mcp sort finished",
		"comparisons", res.Stats.Comparisons, "swaps", res.Stats.Swaps,
		"elapsed", res.Elapsed().Round(time.Microsecond), "cancelled", res.Cancelled)

	out := RunOutput{
		Algorithm: alg,
		Input:     values,
		Values:    res.Values,
		Stats:     res.Stats.Snapshot(res.Finished),
		Cancelled: res.Cancelled,
	}

	if recorder != nil {
		out.Events = recorder.Events()
	}

	return out, nil
}

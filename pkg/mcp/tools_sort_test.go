package mcp

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sortviz/pkg/session"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

func TestPrepareRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   RunInput
		wantLen int
		wantErr error
	}{
		{name: "explicit values", input: RunInput{Algorithm: "bubble", Values: []int{3, 1, 2}}, wantLen: 3},
		{name: "default size", input: RunInput{Algorithm: "merge", Seed: 1}, wantLen: session.DefaultSize},
		{name: "explicit size", input: RunInput{Algorithm: "merge", Size: 12, Seed: 1}, wantLen: 12},
		{name: "empty algorithm", input: RunInput{}, wantErr: ErrEmptyAlgorithm},
		{name: "unknown algorithm", input: RunInput{Algorithm: "heap"}, wantErr: sorting.ErrUnknownAlgorithm},
		{name: "values and size", input: RunInput{Algorithm: "quick", Values: []int{1}, Size: 5}, wantErr: ErrValuesAndSize},
		{name: "size too small", input: RunInput{Algorithm: "quick", Size: 2}, wantErr: session.ErrInvalidSize},
		{name: "too many values", input: RunInput{Algorithm: "quick", Values: make([]int, MaxValues+1)}, wantErr: ErrTooManyValues},
		{name: "zero value", input: RunInput{Algorithm: "quick", Values: []int{4, 0, 3}}, wantErr: ErrNonPositiveValue},
		{name: "negative value", input: RunInput{Algorithm: "bubble", Values: []int{0, -5, 3}}, wantErr: ErrNonPositiveValue},
		{
			name:    "trace too large",
			input:   RunInput{Algorithm: "quick", Size: MaxTraceValues + 1, IncludeEvents: true},
			wantErr: ErrTraceTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, values, err := prepareRun(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Len(t, values, tt.wantLen)
		})
	}
}

func TestRunner_RunSortsEveryAlgorithm(t *testing.T) {
	t.Parallel()

	r := &runner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	input := []int{9, 4, 7, 1, 8, 2, 6}

	for _, alg := range sorting.Algorithms() {
		out, err := r.run(context.Background(), alg, input, true)
		require.NoError(t, err)

		assert.True(t, slices.IsSorted(out.Values), alg)
		assert.Equal(t, []int{9, 4, 7, 1, 8, 2, 6}, input, "input must not be mutated")
		assert.False(t, out.Cancelled)
		assert.NotEmpty(t, out.Events)
		assert.Equal(t, out.Stats.Comparisons, out.Events[len(out.Events)-1].Stats.Comparisons)
	}
}

func TestRunner_RunCancelledContext(t *testing.T) {
	t.Parallel()

	r := &runner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := r.run(ctx, sorting.Bubble, []int{3, 2, 1}, false)
	require.NoError(t, err)

	assert.True(t, out.Cancelled)
	assert.Equal(t, []int{3, 2, 1}, out.Values)
	assert.Zero(t, out.Stats.Comparisons)
}

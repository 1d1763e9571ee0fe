package session_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
	"github.com/Sumatoshi-tech/sortviz/pkg/session"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

// gatePacer blocks the first pause until release is closed, recording every pause.
type gatePacer struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}

	mu     sync.Mutex
	pauses []time.Duration
}

func newGatePacer() *gatePacer {
	return &gatePacer{started: make(chan struct{}), release: make(chan struct{})}
}

func (p *gatePacer) Pause(d time.Duration) {
	p.mu.Lock()
	p.pauses = append(p.pauses, d)
	p.mu.Unlock()

	p.once.Do(func() {
		close(p.started)
		<-p.release
	})
}

func (p *gatePacer) recorded() []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slices.Clone(p.pauses)
}

type runOutcome struct {
	res sorting.Result
	err error
}

func startAsync(s *session.Session, ctx context.Context) <-chan runOutcome {
	out := make(chan runOutcome, 1)

	go func() {
		res, err := s.Start(ctx, nil)
		out <- runOutcome{res: res, err: err}
	}()

	return out
}

func newHeadless(t *testing.T, opts session.Options) *session.Session {
	t.Helper()

	if opts.Pacer == nil {
		opts.Pacer = sorting.NoPause{}
	}

	if opts.Seed == 0 {
		opts.Seed = 7
	}

	s, err := session.New(opts)
	require.NoError(t, err)

	return s
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	s := newHeadless(t, session.Options{})
	snap := s.Snapshot()

	assert.Equal(t, sorting.Bubble, snap.Algorithm)
	assert.Equal(t, session.DefaultSize, snap.Size)
	assert.Equal(t, session.DefaultSpeed, snap.Speed)
	assert.False(t, snap.Running)
	require.Len(t, snap.Values, session.DefaultSize)

	for _, v := range snap.Values {
		assert.GreaterOrEqual(t, v, sorting.DefaultMinValue)
		assert.LessOrEqual(t, v, sorting.DefaultMaxValue)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    session.Options
		wantErr error
	}{
		{"size_small", session.Options{Size: session.MinSize - 1}, session.ErrInvalidSize},
		{"size_large", session.Options{Size: session.MaxSize + 1}, session.ErrInvalidSize},
		{"speed_large", session.Options{Speed: session.MaxSpeed + 1}, session.ErrInvalidSpeed},
		{"speed_negative", session.Options{Speed: -1}, session.ErrInvalidSpeed},
		{"algorithm", session.Options{Algorithm: "bogo"}, sorting.ErrUnknownAlgorithm},
		{"range", session.Options{MinValue: 50, MaxValue: 10}, sorting.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := session.New(tt.opts)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_SeedIsReproducible(t *testing.T) {
	t.Parallel()

	a := newHeadless(t, session.Options{Seed: 99})
	b := newHeadless(t, session.Options{Seed: 99})

	assert.Equal(t, a.Snapshot().Values, b.Snapshot().Values)
}

func TestDelayForSpeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		speed int
		want  time.Duration
	}{
		{1, 100 * time.Millisecond},
		{50, 51 * time.Millisecond},
		{100, time.Millisecond},
		{0, 100 * time.Millisecond},
		{1000, time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, session.DelayForSpeed(tt.speed), "speed %d", tt.speed)
	}
}

func TestSetSize(t *testing.T) {
	t.Parallel()

	s := newHeadless(t, session.Options{})

	values, err := s.SetSize(12)
	require.NoError(t, err)
	assert.Len(t, values, 12)
	assert.Equal(t, 12, s.Snapshot().Size)

	_, err = s.SetSize(session.MaxSize + 1)
	require.ErrorIs(t, err, session.ErrInvalidSize)
	assert.Equal(t, 12, s.Snapshot().Size)
}

func TestSetAlgorithmAndSpeed(t *testing.T) {
	t.Parallel()

	s := newHeadless(t, session.Options{})

	alg, err := s.SetAlgorithm("Quick Sort")
	require.NoError(t, err)
	assert.Equal(t, sorting.Quick, alg)

	_, err = s.SetAlgorithm("shell")
	require.ErrorIs(t, err, sorting.ErrUnknownAlgorithm)

	require.NoError(t, s.SetSpeed(100))
	assert.Equal(t, time.Millisecond, s.Delay())
	require.ErrorIs(t, s.SetSpeed(0), session.ErrInvalidSpeed)

	snap := s.Snapshot()
	assert.Equal(t, sorting.Quick, snap.Algorithm)
	assert.Equal(t, 100, snap.Speed)
}

func TestStart_SortsAndKeepsResult(t *testing.T) {
	t.Parallel()

	for _, alg := range sorting.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			t.Parallel()

			s := newHeadless(t, session.Options{Algorithm: alg, Size: 30})
			before := s.Snapshot().Values

			rec := &sorting.Recorder{}

			res, err := s.Start(context.Background(), rec)
			require.NoError(t, err)

			assert.False(t, res.Cancelled)
			assert.True(t, slices.IsSorted(res.Values))
			assert.Equal(t, res.Values, s.Snapshot().Values)
			assert.GreaterOrEqual(t, rec.Count(sorting.EventMarkSettled), 30)

			sorted := slices.Clone(before)
			slices.Sort(sorted)
			assert.Equal(t, sorted, res.Values)
			assert.False(t, s.Running())
		})
	}
}

func TestStart_SingleActiveRun(t *testing.T) {
	t.Parallel()

	pacer := newGatePacer()
	s := newHeadless(t, session.Options{Algorithm: sorting.Selection, Size: 20, Pacer: pacer})
	before := s.Snapshot().Values

	done := startAsync(s, context.Background())
	<-pacer.started

	assert.True(t, s.Running())
	assert.True(t, s.Snapshot().Running)

	_, err := s.Start(context.Background(), nil)
	require.ErrorIs(t, err, session.ErrRunning)

	_, err = s.Generate()
	require.ErrorIs(t, err, session.ErrRunning)

	_, err = s.SetSize(10)
	require.ErrorIs(t, err, session.ErrRunning)

	assert.True(t, s.Stop())
	close(pacer.release)

	out := <-done
	require.NoError(t, out.err)
	assert.True(t, out.res.Cancelled)

	sortedBefore := slices.Clone(before)
	slices.Sort(sortedBefore)

	sortedAfter := slices.Clone(out.res.Values)
	slices.Sort(sortedAfter)

	assert.Equal(t, sortedBefore, sortedAfter)
	assert.Equal(t, out.res.Values, s.Snapshot().Values)
	assert.False(t, s.Running())
	assert.False(t, s.Stop())

	// A fresh token lets the next run finish.
	res, err := s.Start(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, res.Cancelled)
	assert.True(t, slices.IsSorted(res.Values))
}

func TestStart_SpeedChangeAppliesToRunningSort(t *testing.T) {
	t.Parallel()

	pacer := newGatePacer()
	s := newHeadless(t, session.Options{
		Algorithm:   sorting.Bubble,
		Size:        session.MinSize,
		Speed:       50,
		SettleDelay: 5 * time.Millisecond,
		Pacer:       pacer,
	})

	done := startAsync(s, context.Background())
	<-pacer.started

	require.NoError(t, s.SetSpeed(100))
	close(pacer.release)

	out := <-done
	require.NoError(t, out.err)

	pauses := pacer.recorded()
	require.GreaterOrEqual(t, len(pauses), 2)
	assert.Equal(t, 51*time.Millisecond, pauses[0])
	assert.Equal(t, time.Millisecond, pauses[1])
	assert.Equal(t, 5*time.Millisecond, pauses[len(pauses)-1])
}

func TestStart_CancelledContext(t *testing.T) {
	t.Parallel()

	s := newHeadless(t, session.Options{Algorithm: sorting.Merge})
	before := s.Snapshot().Values

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Start(ctx, nil)
	require.NoError(t, err)

	assert.True(t, res.Cancelled)
	assert.Equal(t, before, res.Values)
	assert.Zero(t, res.Stats.Comparisons)
}

func TestGenerate_ReplacesArray(t *testing.T) {
	t.Parallel()

	s := newHeadless(t, session.Options{Size: 40})
	before := s.Snapshot().Values

	values, err := s.Generate()
	require.NoError(t, err)

	assert.Len(t, values, 40)
	assert.NotEqual(t, before, values)
	assert.Equal(t, values, s.Snapshot().Values)
}

func TestStart_LogsCarryRunAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := observability.NewTracingHandler(slog.NewJSONHandler(&buf, nil), "sortviz", "", observability.ModeCLI)
	sess := newHeadless(t, session.Options{Algorithm: sorting.Merge, Size: 9, Logger: slog.New(handler)})

	for range 2 {
		_, err := sess.Start(context.Background(), nil)
		require.NoError(t, err)
	}

	var runIDs []string

	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))

		run, ok := record["sort"].(map[string]any)
		require.True(t, ok, "record %v has no sort group", record["msg"])

		assert.Equal(t, "merge", run["algorithm"])
		assert.InDelta(t, 9, run["size"], 0)

		if record["msg"] == "sort started" {
			runIDs = append(runIDs, run["id"].(string))
		}
	}

	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"1", "2"}, runIDs)
}

// Package session holds the interactive controller that owns the array,
// speed and algorithm selection, and guarantees at most one active run.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

// Size and speed bounds of a session.
const (
	MinSize      = 5
	MaxSize      = 200
	DefaultSize  = 50
	MinSpeed     = 1
	MaxSpeed     = 100
	DefaultSpeed = 50
)

const tracerName = "github.com/Sumatoshi-tech/sortviz/pkg/session"

// Sentinel errors.
var (
	ErrRunning      = errors.New("a sort is already running")
	ErrInvalidSize  = errors.New("array size out of range")
	ErrInvalidSpeed = errors.New("speed out of range")
)

// DelayForSpeed maps a speed setting to the per-step pacing delay:
// speed 1 waits 100ms, speed 100 waits 1ms. Out-of-range speeds are clamped.
func DelayForSpeed(speed int) time.Duration {
	speed = min(max(speed, MinSpeed), MaxSpeed)

	return time.Duration(MaxSpeed+1-speed) * time.Millisecond
}

// Options configures a Session. Zero values pick the defaults.
type Options struct {
	Algorithm   sorting.Algorithm
	Size        int
	Speed       int
	MinValue    int
	MaxValue    int
	SettleDelay time.Duration

	// Seed makes array generation reproducible. Zero draws a random seed.
	Seed uint64

	Pacer   sorting.Pacer
	Clock   func() time.Time
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.SortMetrics
}

// Snapshot is a copy of the session's visible state.
type Snapshot struct {
	Values    []int             `json:"values"`
	Algorithm sorting.Algorithm `json:"algorithm"`
	Size      int               `json:"size"`
	Speed     int               `json:"speed"`
	Running   bool              `json:"running"`
}

// Session is safe for concurrent use. Start blocks for the duration of a
// run while Stop, SetSpeed and Snapshot may be called from other goroutines.
type Session struct {
	speed atomic.Int64
	runs  atomic.Uint64

	mu        sync.Mutex
	rng       *rand.Rand
	values    []int
	algorithm sorting.Algorithm
	size      int
	token     *sorting.Token

	minValue    int
	maxValue    int
	settleDelay time.Duration
	pacer       sorting.Pacer
	clock       func() time.Time
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *observability.SortMetrics
}

// New validates opts and returns a session holding a freshly generated array.
func New(opts Options) (*Session, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = sorting.Bubble
	}

	if opts.Size == 0 {
		opts.Size = DefaultSize
	}

	if opts.Speed == 0 {
		opts.Speed = DefaultSpeed
	}

	if opts.MinValue == 0 && opts.MaxValue == 0 {
		opts.MinValue, opts.MaxValue = sorting.DefaultMinValue, sorting.DefaultMaxValue
	}

	alg, err := sorting.ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return nil, err
	}

	err = errors.Join(validateSize(opts.Size), validateSpeed(opts.Speed))
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	s := &Session{
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		algorithm:   alg,
		size:        opts.Size,
		minValue:    opts.MinValue,
		maxValue:    opts.MaxValue,
		settleDelay: opts.SettleDelay,
		pacer:       opts.Pacer,
		clock:       opts.Clock,
		logger:      observability.LoggerOrDefault(opts.Logger),
		tracer:      tracer,
		metrics:     opts.Metrics,
	}
	s.speed.Store(int64(opts.Speed))

	err = s.regenerate()
	if err != nil {
		return nil, err
	}

	return s, nil
}

func validateSize(size int) error {
	if size < MinSize || size > MaxSize {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidSize, size, MinSize, MaxSize)
	}

	return nil
}

func validateSpeed(speed int) error {
	if speed < MinSpeed || speed > MaxSpeed {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidSpeed, speed, MinSpeed, MaxSpeed)
	}

	return nil
}

// regenerate must be called with mu held or before the session is shared.
func (s *Session) regenerate() error {
	values, err := sorting.Generate(s.rng, s.size, s.minValue, s.maxValue)
	if err != nil {
		return fmt.Errorf("generate array: %w", err)
	}

	s.values = values

	return nil
}

// Generate replaces the array with new random values of the current size.
func (s *Session) Generate() ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil {
		return nil, ErrRunning
	}

	if err := s.regenerate(); err != nil {
		return nil, err
	}

	return slices.Clone(s.values), nil
}

// SetSize changes the array length and regenerates the array.
func (s *Session) SetSize(size int) ([]int, error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil {
		return nil, ErrRunning
	}

	s.size = size

	if err := s.regenerate(); err != nil {
		return nil, err
	}

	return slices.Clone(s.values), nil
}

// SetSpeed changes the pacing speed. A running sort picks it up at its next step.
func (s *Session) SetSpeed(speed int) error {
	if err := validateSpeed(speed); err != nil {
		return err
	}

	s.speed.Store(int64(speed))

	return nil
}

// SetAlgorithm selects the algorithm used by the next Start.
func (s *Session) SetAlgorithm(name string) (sorting.Algorithm, error) {
	alg, err := sorting.ParseAlgorithm(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.algorithm = alg
	s.mu.Unlock()

	return alg, nil
}

// Delay returns the pacing delay for the current speed.
func (s *Session) Delay() time.Duration {
	return DelayForSpeed(int(s.speed.Load()))
}

// Start sorts the current array with the selected algorithm, streaming
// events to sink, and blocks until the run completes or is stopped. The
// resulting array, sorted or partially sorted, becomes the current array.
// Cancelling ctx stops the run like Stop does.
func (s *Session) Start(ctx context.Context, sink sorting.Sink) (sorting.Result, error) {
	s.mu.Lock()

	if s.token != nil {
		s.mu.Unlock()

		return sorting.Result{}, ErrRunning
	}

	token := sorting.NewToken()
	s.token = token
	alg := s.algorithm
	values := slices.Clone(s.values)

	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.token = nil
		s.mu.Unlock()
	}()

	detach := token.StopWhenDone(ctx)
	defer detach()

	// AfterFunc fires asynchronously; an already-done context must stop
	// the run before its first step.
	if ctx.Err() != nil {
		token.Stop()
	}

	runID := strconv.FormatUint(s.runs.Add(1), 10)

	ctx, span := s.tracer.Start(ctx, "sortviz.session.run", trace.WithAttributes(
		attribute.String("sort.run_id", runID),
		attribute.String("sort.algorithm", string(alg)),
		attribute.Int("sort.size", len(values)),
	))
	defer span.End()

	ctx = observability.ContextWithRun(ctx, observability.RunInfo{
		ID:        runID,
		Algorithm: string(alg),
		Size:      len(values),
	})

	untrack := s.metrics.TrackActive(ctx, string(alg))
	defer untrack()

	s.logger.InfoContext(ctx, "sort started", "speed", s.speed.Load())

	res, err := sorting.Run(alg, values, token, sorting.Options{
		DelayFunc:   s.Delay,
		SettleDelay: s.settleDelay,
		Sink:        sink,
		Pacer:       s.pacer,
		Clock:       s.clock,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return sorting.Result{}, fmt.Errorf("run %s: %w", alg, err)
	}

	s.mu.Lock()
	s.values = slices.Clone(res.Values)
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int64("sort.comparisons", res.Stats.Comparisons),
		attribute.Int64("sort.swaps", res.Stats.Swaps),
		attribute.Bool("sort.cancelled", res.Cancelled),
	)

	s.metrics.RecordRun(ctx, observability.RunRecord{
		Algorithm:   string(alg),
		Size:        len(res.Values),
		Comparisons: res.Stats.Comparisons,
		Swaps:       res.Stats.Swaps,
		Elapsed:     res.Elapsed(),
		Cancelled:   res.Cancelled,
	})

	s.logger.InfoContext(ctx, "sort finished",
		"comparisons", res.Stats.Comparisons,
		"swaps", res.Stats.Swaps,
		"elapsed", res.Elapsed(),
		"cancelled", res.Cancelled,
	)

	return res, nil
}

// Stop requests the active run to stop at its next step boundary.
// It reports whether a run was active.
func (s *Session) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil {
		return false
	}

	s.token.Stop()

	return true
}

// Running reports whether a run is active.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token != nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Values:    slices.Clone(s.values),
		Algorithm: s.algorithm,
		Size:      s.size,
		Speed:     int(s.speed.Load()),
		Running:   s.token != nil,
	}
}

package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal       = "sortviz.runs.total"
	metricComparisons     = "sortviz.comparisons.total"
	metricSwaps           = "sortviz.swaps.total"
	metricRunDuration     = "sortviz.run.duration.seconds"
	metricArraySize       = "sortviz.array.size"
	metricActiveRuns      = "sortviz.runs.active"
	attrAlgorithm         = "algorithm"
	attrOutcome           = "outcome"
	outcomeCompleted      = "completed"
	outcomeCancelled      = "cancelled"
	runDurationUpperBound = 600
)

var (
	// runBucketBoundaries spans zero-delay runs (milliseconds) through
	// fully paced runs at the slowest speed (minutes).
	runBucketBoundaries = []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, runDurationUpperBound}

	sizeBucketBoundaries = []float64{5, 10, 25, 50, 100, 150, 200, 500}
)

// RunRecord summarises one finished sorting run.
type RunRecord struct {
	Algorithm   string
	Size        int
	Comparisons int64
	Swaps       int64
	Elapsed     time.Duration
	Cancelled   bool
}

// SortMetrics holds the instruments describing sorting runs.
// A nil *SortMetrics records nothing.
type SortMetrics struct {
	runsTotal   metric.Int64Counter
	comparisons metric.Int64Counter
	swaps       metric.Int64Counter
	runDuration metric.Float64Histogram
	arraySize   metric.Float64Histogram
	activeRuns  metric.Int64UpDownCounter
}

// NewSortMetrics creates the run instruments from mt.
func NewSortMetrics(mt metric.Meter) (*SortMetrics, error) {
	b := newMetricBuilder(mt)

	sm := &SortMetrics{
		runsTotal:   b.counter(metricRunsTotal, "Sorting runs by outcome", "{run}"),
		comparisons: b.counter(metricComparisons, "Element comparisons performed", "{comparison}"),
		swaps:       b.counter(metricSwaps, "Exchanges and overwrites committed", "{swap}"),
		runDuration: b.histogram(metricRunDuration, "Wall-clock duration of a run", "s", runBucketBoundaries...),
		arraySize:   b.histogram(metricArraySize, "Length of sorted arrays", "{element}", sizeBucketBoundaries...),
		activeRuns:  b.upDownCounter(metricActiveRuns, "Runs currently executing", "{run}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return sm, nil
}

// RecordRun records the counters of a finished run.
func (sm *SortMetrics) RecordRun(ctx context.Context, rec RunRecord) {
	if sm == nil {
		return
	}

	outcome := outcomeCompleted
	if rec.Cancelled {
		outcome = outcomeCancelled
	}

	algAttr := attribute.String(attrAlgorithm, rec.Algorithm)
	both := metric.WithAttributes(algAttr, attribute.String(attrOutcome, outcome))

	sm.runsTotal.Add(ctx, 1, both)
	sm.runDuration.Record(ctx, rec.Elapsed.Seconds(), both)
	sm.comparisons.Add(ctx, rec.Comparisons, metric.WithAttributes(algAttr))
	sm.swaps.Add(ctx, rec.Swaps, metric.WithAttributes(algAttr))
	sm.arraySize.Record(ctx, float64(rec.Size), metric.WithAttributes(algAttr))
}

// TrackActive increments the active-run counter and returns the decrement.
func (sm *SortMetrics) TrackActive(ctx context.Context, algorithm string) func() {
	if sm == nil {
		return func() {}
	}

	attrs := metric.WithAttributes(attribute.String(attrAlgorithm, algorithm))
	sm.activeRuns.Add(ctx, 1, attrs)

	return func() {
		sm.activeRuns.Add(ctx, -1, attrs)
	}
}

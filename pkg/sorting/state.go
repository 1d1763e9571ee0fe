// Package sorting implements the five instrumented sorting algorithms behind
// the visualizer. Every comparison and mutation is reported through a [Sink],
// paced by a [Pacer], and gated by a shared [Token] so a run can be stopped
// at any step boundary.
package sorting

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Default bounds for generated bar heights.
const (
	DefaultMinValue = 10
	DefaultMaxValue = 309
)

// Sentinel errors for array generation.
var (
	ErrInvalidSize  = errors.New("array size must not be negative")
	ErrInvalidRange = errors.New("invalid value range")
)

// Stats holds the counters of a single run.
type Stats struct {
	Comparisons int64
	Swaps       int64
	Started     time.Time
}

// Reset zeroes the counters and restarts the clock.
func (s *Stats) Reset(now time.Time) {
	*s = Stats{Started: now}
}

// Elapsed returns the wall-clock time since the run started.
func (s Stats) Elapsed(now time.Time) time.Duration {
	if s.Started.IsZero() {
		return 0
	}

	return now.Sub(s.Started)
}

// Snapshot freezes the counters for display.
func (s Stats) Snapshot(now time.Time) StatsSnapshot {
	return StatsSnapshot{
		Comparisons: s.Comparisons,
		Swaps:       s.Swaps,
		Elapsed:     s.Elapsed(now),
	}
}

// StatsSnapshot is a read-only view of the counters at one point of a run.
type StatsSnapshot struct {
	Comparisons int64         `json:"comparisons"`
	Swaps       int64         `json:"swaps"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// State is the array being sorted together with its run statistics.
// The length of Values never changes during a run.
type State struct {
	Values []int
	Stats  Stats
}

// Generate returns size random values drawn uniformly from [lo, hi].
func Generate(rng *rand.Rand, size, lo, hi int) ([]int, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	if lo <= 0 || hi < lo {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, lo, hi)
	}

	values := make([]int, size)
	for i := range values {
		values[i] = lo + rng.IntN(hi-lo+1)
	}

	return values, nil
}

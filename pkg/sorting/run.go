package sorting

import (
	"fmt"
	"slices"
	"time"
)

// DefaultSettleDelay is the pause between marks of the completion sweep.
// It does not depend on the run speed.
const DefaultSettleDelay = 20 * time.Millisecond

// Options configures a run. Zero values select headless defaults.
type Options struct {
	// Delay is the pacing delay after each instrumented step.
	Delay time.Duration

	// DelayFunc, when set, replaces Delay and is consulted before every step.
	DelayFunc func() time.Duration

	// SettleDelay is the pause between completion marks. Zero uses DefaultSettleDelay.
	SettleDelay time.Duration

	// Sink receives every event. Nil discards them.
	Sink Sink

	// Pacer performs the delays. Nil uses Sleeper.
	Pacer Pacer

	// Clock reports the current time. Nil uses time.Now.
	Clock func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}

	if o.DelayFunc == nil {
		delay := o.Delay
		o.DelayFunc = func() time.Duration { return delay }
	}

	if o.Sink == nil {
		o.Sink = Discard
	}

	if o.Pacer == nil {
		o.Pacer = Sleeper{}
	}

	if o.Clock == nil {
		o.Clock = time.Now
	}

	return o
}

// Result is the outcome of a run. When Cancelled is set, Values holds the
// partially sorted permutation and Stats the last committed counters.
type Result struct {
	Algorithm Algorithm
	Values    []int
	Stats     Stats
	Finished  time.Time
	Cancelled bool
}

// Elapsed returns the wall-clock duration of the run.
func (r Result) Elapsed() time.Duration {
	return r.Stats.Elapsed(r.Finished)
}

// Run sorts a copy of values with alg. Stopping token interrupts the run at
// the next step boundary; that is reported through Result.Cancelled and is
// not an error. A nil token never stops.
func Run(alg Algorithm, values []int, token *Token, opts Options) (Result, error) {
	algo, ok := catalog[alg]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}

	opts = opts.withDefaults()

	state := &State{Values: slices.Clone(values)}
	state.Stats.Reset(opts.Clock())

	ch := newChannel(state, token, opts)
	ch.publishStats()

	done := algo.run(ch) && ch.sweep(opts.SettleDelay)

	return Result{
		Algorithm: alg,
		Values:    state.Values,
		Stats:     state.Stats,
		Finished:  opts.Clock(),
		Cancelled: !done,
	}, nil
}

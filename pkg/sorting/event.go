package sorting

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// EventKind tags an instrumentation event.
type EventKind uint8

// Event kinds, in the order a renderer usually sees them within a step.
const (
	// EventCompare highlights indices whose values are being compared.
	EventCompare EventKind = iota + 1
	// EventCommit reports that Values were written at Indices.
	EventCommit
	// EventMarkActive highlights indices the algorithm is working around (a pivot or a held key).
	EventMarkActive
	// EventMarkSettled reports an index that holds its final value.
	EventMarkSettled
	// EventClear removes any highlight from indices.
	EventClear
	// EventStats carries the counters after they changed.
	EventStats
)

// Highlight classes a renderer maps event kinds to.
const (
	ClassComparing = "comparing"
	ClassSwapping  = "swapping"
	ClassPivot     = "pivot-in-progress"
	ClassSettled   = "settled"
	ClassNone      = "none"
)

// ErrUnknownEventKind is returned when decoding an unrecognized event kind.
var ErrUnknownEventKind = errors.New("unknown event kind")

var eventKindNames = map[EventKind]string{
	EventCompare:     "compare",
	EventCommit:      "commit",
	EventMarkActive:  "mark_active",
	EventMarkSettled: "mark_settled",
	EventClear:       "clear",
	EventStats:       "stats",
}

// String returns the wire name of the kind.
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// MarshalText implements [encoding.TextMarshaler].
func (k EventKind) MarshalText() ([]byte, error) {
	name, ok := eventKindNames[k]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEventKind, uint8(k))
	}

	return []byte(name), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (k *EventKind) UnmarshalText(text []byte) error {
	for kind, name := range eventKindNames {
		if name == string(text) {
			*k = kind

			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownEventKind, text)
}

// Class returns the highlight class for the kind. Stats events carry no highlight.
func (k EventKind) Class() string {
	switch k {
	case EventCompare:
		return ClassComparing
	case EventCommit:
		return ClassSwapping
	case EventMarkActive:
		return ClassPivot
	case EventMarkSettled:
		return ClassSettled
	case EventClear, EventStats:
		return ClassNone
	default:
		return ClassNone
	}
}

// Event is a single instrumentation event. Events are delivered synchronously
// and in emission order; a sink must not retain the slices past Emit.
type Event struct {
	Kind    EventKind     `json:"kind"`
	Indices []int         `json:"indices,omitempty"`
	Values  []int         `json:"values,omitempty"`
	Stats   StatsSnapshot `json:"stats"`
}

// Sink consumes instrumentation events.
type Sink interface {
	Emit(ev Event)
}

// SinkFunc adapts a function to a [Sink].
type SinkFunc func(ev Event)

// Emit calls f(ev).
func (f SinkFunc) Emit(ev Event) {
	f(ev)
}

type discard struct{}

func (discard) Emit(Event) {}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type tee []Sink

func (t tee) Emit(ev Event) {
	for _, s := range t {
		s.Emit(ev)
	}
}

// Tee returns a Sink that forwards every event to each of sinks in order.
func Tee(sinks ...Sink) Sink {
	out := make(tee, 0, len(sinks))

	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}

	return out
}

// Recorder is a Sink that keeps a copy of every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit records a copy of ev.
func (r *Recorder) Emit(ev Event) {
	ev.Indices = slices.Clone(ev.Indices)
	ev.Values = slices.Clone(ev.Values)

	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.events)
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0

	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}

	return n
}

// Pacer suspends the run after an instrumented step.
type Pacer interface {
	Pause(d time.Duration)
}

// Sleeper paces with [time.Sleep]. A pause always runs to completion.
type Sleeper struct{}

// Pause sleeps for d.
func (Sleeper) Pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// NoPause never waits. Used for headless runs and tests.
type NoPause struct{}

// Pause returns immediately.
func (NoPause) Pause(time.Duration) {}

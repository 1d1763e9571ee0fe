package sorting

import "time"

// Channel is the instrumentation harness an algorithm runs against. Each step
// method checks the token first; a false return means the run was stopped and
// the caller must return without touching the array again.
type Channel struct {
	state *State
	token *Token
	sink  Sink
	pacer Pacer
	delay func() time.Duration
	now   func() time.Time
}

func newChannel(state *State, token *Token, opts Options) *Channel {
	return &Channel{
		state: state,
		token: token,
		sink:  opts.Sink,
		pacer: opts.Pacer,
		delay: opts.DelayFunc,
		now:   opts.Clock,
	}
}

// wait sleeps one step; the delay is re-read every time so speed changes
// apply to the running sort.
func (c *Channel) wait() {
	c.pacer.Pause(c.delay())
}

func (c *Channel) running() bool {
	return !c.token.Stopped()
}

func (c *Channel) emit(kind EventKind, indices, values []int) {
	c.sink.Emit(Event{
		Kind:    kind,
		Indices: indices,
		Values:  values,
		Stats:   c.state.Stats.Snapshot(c.now()),
	})
}

func (c *Channel) publishStats() {
	c.emit(EventStats, nil, nil)
}

// compare highlights indices, waits one step, then counts a comparison.
func (c *Channel) compare(indices ...int) bool {
	if !c.running() {
		return false
	}

	c.emit(EventCompare, indices, nil)
	c.wait()

	c.state.Stats.Comparisons++
	c.publishStats()

	return true
}

// exchange swaps two positions and counts it, even when i == j.
func (c *Channel) exchange(i, j int) bool {
	if !c.running() {
		return false
	}

	values := c.state.Values
	values[i], values[j] = values[j], values[i]
	c.state.Stats.Swaps++

	c.emit(EventCommit, []int{i, j}, []int{values[i], values[j]})
	c.publishStats()
	c.wait()
	c.emit(EventClear, []int{i, j}, nil)

	return true
}

// overwrite writes value at k and counts it as a swap.
func (c *Channel) overwrite(k, value int) bool {
	if !c.running() {
		return false
	}

	c.state.Values[k] = value
	c.state.Stats.Swaps++

	c.emit(EventCommit, []int{k}, []int{value})
	c.publishStats()
	c.wait()
	c.emit(EventClear, []int{k}, nil)

	return true
}

// place writes value at k without counting or pacing. The write happens even
// after a stop so a held value is never lost; only the events are suppressed.
// The commit is cleared right away so the placed bar is not left highlighted.
func (c *Channel) place(k, value int) bool {
	c.state.Values[k] = value

	if !c.running() {
		return false
	}

	c.emit(EventCommit, []int{k}, []int{value})
	c.emit(EventClear, []int{k}, nil)

	return true
}

// activate highlights the indices the current step pivots around.
func (c *Channel) activate(indices ...int) bool {
	if !c.running() {
		return false
	}

	c.emit(EventMarkActive, indices, nil)
	c.wait()

	return true
}

func (c *Channel) settle(index int) bool {
	if !c.running() {
		return false
	}

	c.emit(EventMarkSettled, []int{index}, nil)

	return true
}

func (c *Channel) clear(indices ...int) bool {
	if !c.running() {
		return false
	}

	c.emit(EventClear, indices, nil)

	return true
}

// sweep marks every index settled left to right with a fixed pause between marks.
func (c *Channel) sweep(pause time.Duration) bool {
	for i := range c.state.Values {
		if !c.settle(i) {
			return false
		}

		c.pacer.Pause(pause)
	}

	return true
}

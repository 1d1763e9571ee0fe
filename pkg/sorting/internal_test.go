package sorting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTakeLeft_FavorsLeftOnTies(t *testing.T) {
	t.Parallel()

	assert.True(t, takeLeft(3, 3))
	assert.True(t, takeLeft(1, 2))
	assert.False(t, takeLeft(2, 1))
}

func TestInsertion_AbortRestoresHeldKey(t *testing.T) {
	t.Parallel()

	token := NewToken()
	state := &State{Values: []int{4, 5, 1}}

	// Stop on the first counted shift; the final placement of a key is never counted.
	opts := Options{Pacer: NoPause{}, Sink: SinkFunc(func(ev Event) {
		if ev.Kind == EventCommit && ev.Stats.Swaps == 1 {
			token.Stop()
		}
	})}.withDefaults()

	ok := insertionSort(newChannel(state, token, opts))

	assert.False(t, ok)
	assert.Equal(t, int64(1), state.Stats.Swaps)
	// 5 was shifted right over the held 1, which went back into the vacated slot.
	assert.Equal(t, []int{4, 1, 5}, state.Values)
}

func TestMerge_AbortRestoresBuffers(t *testing.T) {
	t.Parallel()

	token := NewToken()
	state := &State{Values: []int{2, 9, 1, 3}}

	opts := Options{Pacer: NoPause{}, Sink: SinkFunc(func(ev Event) {
		if ev.Kind == EventCommit {
			token.Stop()
		}
	})}.withDefaults()

	ok := merge(newChannel(state, token, opts), 0, 1, 3)

	assert.False(t, ok)
	// 1 was written at 0; the unconsumed [2 9] and [3] fill the rest in order.
	assert.Equal(t, []int{1, 2, 9, 3}, state.Values)
}

func TestEventKind_TextRoundTrip(t *testing.T) {
	t.Parallel()

	for kind := EventCompare; kind <= EventStats; kind++ {
		text, err := kind.MarshalText()
		assert.NoError(t, err)

		var back EventKind
		assert.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, kind, back)
	}

	var bad EventKind
	assert.ErrorIs(t, bad.UnmarshalText([]byte("explode")), ErrUnknownEventKind)
}

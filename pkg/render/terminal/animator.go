package terminal

import (
	"fmt"
	"io"
	"sync"

	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

// ANSI sequences that move the cursor home and clear to the end of the screen.
const (
	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
	clearToEnd  = "\x1b[J"
)

// Animator is a [sorting.Sink] that redraws the board on out after every
// visual event. Stats events only update the counters shown with the next frame.
type Animator struct {
	mu     sync.Mutex
	out    io.Writer
	cfg    Config
	board  *Board
	frames int
	err    error
}

// NewAnimator returns an animator for a run of alg over values.
func NewAnimator(out io.Writer, cfg Config, alg sorting.Algorithm, values []int) *Animator {
	return &Animator{out: out, cfg: cfg, board: NewBoard(alg, values)}
}

// Emit implements [sorting.Sink].
func (a *Animator) Emit(ev sorting.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.board.Apply(ev)

	if ev.Kind == sorting.EventStats {
		return
	}

	a.drawLocked()
}

// Draw renders the current frame, e.g. the unsorted array before a run.
func (a *Animator) Draw() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.drawLocked()
}

func (a *Animator) drawLocked() {
	if a.err != nil {
		return
	}

	prefix := cursorHome + clearToEnd
	if a.frames == 0 {
		prefix = clearScreen + cursorHome
	}

	_, err := io.WriteString(a.out, prefix+a.board.Render(a.cfg))
	if err != nil {
		a.err = fmt.Errorf("draw frame: %w", err)

		return
	}

	a.frames++
}

// Frames returns how many frames were drawn.
func (a *Animator) Frames() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.frames
}

// Err returns the first write error; drawing stops after it.
func (a *Animator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.err
}

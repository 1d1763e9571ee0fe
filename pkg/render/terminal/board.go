package terminal

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

const (
	glyphBar   = "█"
	glyphEmpty = " "
)

// Board is the screen model of a run: the bar heights, the highlight class
// of every bar, and the latest counters.
type Board struct {
	Algorithm sorting.Algorithm
	Values    []int
	Classes   []string
	Stats     sorting.StatsSnapshot
}

// NewBoard returns a board showing values with no highlights.
func NewBoard(alg sorting.Algorithm, values []int) *Board {
	classes := make([]string, len(values))
	for i := range classes {
		classes[i] = sorting.ClassNone
	}

	return &Board{Algorithm: alg, Values: slices.Clone(values), Classes: classes}
}

// Apply folds one event into the board.
func (b *Board) Apply(ev sorting.Event) {
	b.Stats = ev.Stats

	if ev.Kind == sorting.EventStats {
		return
	}

	if ev.Kind == sorting.EventCommit {
		for i, idx := range ev.Indices {
			if i < len(ev.Values) {
				b.Values[idx] = ev.Values[i]
			}
		}
	}

	class := ev.Kind.Class()
	for _, idx := range ev.Indices {
		b.Classes[idx] = class
	}
}

// Render draws the board as rows of vertical bars followed by a status line.
func (b *Board) Render(cfg Config) string {
	height := cfg.height()
	width := cfg.barWidth(len(b.Values))
	peak := slices.Max(append([]int{1}, b.Values...))

	palette := newPalette(cfg.NoColor)

	var sb strings.Builder

	for row := height; row >= 1; row-- {
		for i, v := range b.Values {
			cell := glyphEmpty
			if scaled(v, peak, height) >= row {
				cell = glyphBar
			}

			sb.WriteString(palette.paint(b.Classes[i], strings.Repeat(cell, width)))
		}

		sb.WriteByte('\n')
	}

	sb.WriteString(b.Status())
	sb.WriteByte('\n')

	return sb.String()
}

// Status formats the algorithm name and counters on one line.
func (b *Board) Status() string {
	return fmt.Sprintf("%s  comparisons %s  swaps %s  time %dms",
		b.Algorithm.Info().Name,
		humanize.Comma(b.Stats.Comparisons),
		humanize.Comma(b.Stats.Swaps),
		b.Stats.Elapsed.Milliseconds(),
	)
}

// scaled maps v in [0, peak] to a bar of 1..height rows.
func scaled(v, peak, height int) int {
	if v <= 0 {
		return 0
	}

	return max((v*height+peak-1)/peak, 1)
}

type palette map[string]*color.Color

func newPalette(noColor bool) palette {
	p := palette{
		sorting.ClassComparing: color.New(color.FgYellow),
		sorting.ClassSwapping:  color.New(color.FgRed),
		sorting.ClassPivot:     color.New(color.FgMagenta),
		sorting.ClassSettled:   color.New(color.FgGreen),
		sorting.ClassNone:      color.New(color.FgCyan),
	}

	for _, c := range p {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}

	return p
}

func (p palette) paint(class, text string) string {
	c, ok := p[class]
	if !ok {
		return text
	}

	return c.Sprint(text)
}

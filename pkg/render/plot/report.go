package plot

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

// DefaultMaxPoints caps the samples drawn on a timeline.
const DefaultMaxPoints = 500

// Timeline holds the cumulative counters after each Stats event of a run.
type Timeline struct {
	Steps       []int64
	Comparisons []int64
	Swaps       []int64
}

// NewTimeline samples the Stats events of a run down to at most maxPoints
// points, always keeping the last one. maxPoints <= 0 keeps every point.
func NewTimeline(events []sorting.Event, maxPoints int) Timeline {
	var stats []sorting.StatsSnapshot

	for _, ev := range events {
		if ev.Kind == sorting.EventStats {
			stats = append(stats, ev.Stats)
		}
	}

	stride := 1
	if maxPoints > 0 && len(stats) > maxPoints {
		stride = (len(stats) + maxPoints - 1) / maxPoints
	}

	var tl Timeline

	for i, st := range stats {
		if i%stride != 0 && i != len(stats)-1 {
			continue
		}

		tl.Steps = append(tl.Steps, int64(i))
		tl.Comparisons = append(tl.Comparisons, st.Comparisons)
		tl.Swaps = append(tl.Swaps, st.Swaps)
	}

	return tl
}

// Touches counts per index how often it was compared and how often it was written.
func Touches(n int, events []sorting.Event) (compared, written []int64) {
	compared = make([]int64, n)
	written = make([]int64, n)

	for _, ev := range events {
		var counts []int64

		switch ev.Kind {
		case sorting.EventCompare:
			counts = compared
		case sorting.EventCommit:
			counts = written
		default:
			continue
		}

		for _, idx := range ev.Indices {
			if idx >= 0 && idx < n {
				counts[idx]++
			}
		}
	}

	return compared, written
}

// RunReport builds the page for one run: the array before and after, the
// counter timeline, and the per-index activity.
func RunReport(initial []int, res sorting.Result, events []sorting.Event) *components.Page {
	info := res.Algorithm.Info()
	cOpts := DefaultChartOpts()
	labels := indexLabels(len(initial))

	before := BuildBarChart(cOpts, info.Name+": initial array", labels, []BarSeries{
		{Name: "value", Data: widen(initial), Color: ColorBar},
	}, "value")

	afterColor := ColorSettled
	if res.Cancelled {
		afterColor = ColorSwapping
	}

	after := BuildBarChart(cOpts, info.Name+": "+outcome(res), labels, []BarSeries{
		{Name: "value", Data: widen(res.Values), Color: afterColor},
	}, "value")

	tl := NewTimeline(events, DefaultMaxPoints)
	timeline := BuildLineChart(cOpts, "Cumulative counters", stepLabels(tl.Steps), []LineSeries{
		{Name: "comparisons", Data: tl.Comparisons, Color: ColorComparing},
		{Name: "swaps", Data: tl.Swaps, Color: ColorSwapping},
	}, "count")

	compared, written := Touches(len(initial), events)
	activity := BuildBarChart(cOpts, "Activity per index", labels, []BarSeries{
		{Name: "compared", Data: compared, Color: ColorComparing},
		{Name: "written", Data: written, Color: ColorSwapping},
	}, "events")

	page := components.NewPage()
	page.SetPageTitle(fmt.Sprintf("sortviz: %s (%s)", info.Name, info.Complexity))
	page.AddCharts(before, after, timeline, activity)

	return page
}

// CompareReport builds a page contrasting the counters of several runs over
// the same input.
func CompareReport(results []sorting.Result) *components.Page {
	cOpts := DefaultChartOpts()

	labels := make([]string, len(results))
	comparisons := make([]int64, len(results))
	swaps := make([]int64, len(results))
	elapsed := make([]int64, len(results))

	for i, res := range results {
		labels[i] = res.Algorithm.Info().Name
		comparisons[i] = res.Stats.Comparisons
		swaps[i] = res.Stats.Swaps
		elapsed[i] = res.Elapsed().Microseconds()
	}

	counters := BuildBarChart(cOpts, "Comparisons and swaps", labels, []BarSeries{
		{Name: "comparisons", Data: comparisons, Color: ColorComparing},
		{Name: "swaps", Data: swaps, Color: ColorSwapping},
	}, "count")

	timing := BuildBarChart(cOpts, "Elapsed time", labels, []BarSeries{
		{Name: "elapsed", Data: elapsed, Color: ColorPivot},
	}, "µs")

	page := components.NewPage()
	page.SetPageTitle("sortviz: algorithm comparison")
	page.AddCharts(counters, timing)

	return page
}

// Write renders page as a standalone HTML document.
func Write(w io.Writer, page *components.Page) error {
	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	return nil
}

func outcome(res sorting.Result) string {
	if res.Cancelled {
		return "stopped"
	}

	return "sorted"
}

func widen(values []int) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}

	return out
}

func indexLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}

	return labels
}

func stepLabels(steps []int64) []string {
	labels := make([]string, len(steps))
	for i, s := range steps {
		labels[i] = strconv.FormatInt(s, 10)
	}

	return labels
}


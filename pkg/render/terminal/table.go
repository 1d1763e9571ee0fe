package terminal

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

// SummaryTable renders one row per result with its counters, in the order given.
func SummaryTable(results []sorting.Result) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	tbl.AppendHeader(table.Row{"Algorithm", "Complexity", "Comparisons", "Swaps", "Elapsed", "Status"})

	var comparisons, swaps int64

	for _, res := range results {
		info := res.Algorithm.Info()

		tbl.AppendRow(table.Row{
			info.Name,
			info.Complexity,
			humanize.Comma(res.Stats.Comparisons),
			humanize.Comma(res.Stats.Swaps),
			formatElapsed(res.Elapsed()),
			status(res),
		})

		comparisons += res.Stats.Comparisons
		swaps += res.Stats.Swaps
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d runs", len(results)), "", humanize.Comma(comparisons), humanize.Comma(swaps), "", "",
	})

	return tbl.Render()
}

// Summary formats a single result on one line.
func Summary(res sorting.Result) string {
	return fmt.Sprintf("%s %s: %s comparisons, %s swaps in %s",
		res.Algorithm.Info().Name,
		status(res),
		humanize.Comma(res.Stats.Comparisons),
		humanize.Comma(res.Stats.Swaps),
		formatElapsed(res.Elapsed()),
	)
}

func status(res sorting.Result) string {
	if res.Cancelled {
		return "stopped"
	}

	return "sorted"
}

func formatElapsed(d time.Duration) string {
	if d < time.Millisecond {
		return d.Round(time.Microsecond).String()
	}

	return d.Round(time.Millisecond).String()
}

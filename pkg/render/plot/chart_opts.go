// Package plot renders sorting runs as interactive HTML reports built on
// go-echarts.
package plot

import (
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	dataZoomEndPercent = 100
	chartWidth         = "100%"
	chartHeight        = "420px"
)

// Palette colours, one per highlight class plus the series accents.
const (
	ColorBackground = "#1e1b18"
	ColorText       = "#ede0d4"
	ColorTextMuted  = "#a8998a"
	ColorGrid       = "#3b332c"
	ColorAxis       = "#5c5047"
	ColorBar        = "#4ea8de"
	ColorComparing  = "#f4d35e"
	ColorSwapping   = "#ee6055"
	ColorPivot      = "#b388eb"
	ColorSettled    = "#60d394"
)

// ChartOpts builds the themed option structs shared by every chart in a report.
type ChartOpts struct {
	Background string
	Text       string
	TextMuted  string
	Grid       string
	Axis       string
}

// DefaultChartOpts returns the dark report theme.
func DefaultChartOpts() *ChartOpts {
	return &ChartOpts{
		Background: ColorBackground,
		Text:       ColorText,
		TextMuted:  ColorTextMuted,
		Grid:       ColorGrid,
		Axis:       ColorAxis,
	}
}

// Init returns initialization options with the themed background.
func (c *ChartOpts) Init() opts.Initialization {
	return opts.Initialization{
		Width:           chartWidth,
		Height:          chartHeight,
		BackgroundColor: c.Background,
	}
}

// Title returns title options with themed text colours.
func (c *ChartOpts) Title(title, subtitle string) opts.Title {
	return opts.Title{
		Title:         title,
		Subtitle:      subtitle,
		Left:          "center",
		TitleStyle:    &opts.TextStyle{Color: c.Text},
		SubtitleStyle: &opts.TextStyle{Color: c.TextMuted},
	}
}

// Legend returns a scrollable legend under the title.
func (c *ChartOpts) Legend() opts.Legend {
	return opts.Legend{
		Show:      opts.Bool(true),
		Type:      "scroll",
		Top:       "12%",
		Left:      "center",
		TextStyle: &opts.TextStyle{Color: c.TextMuted},
	}
}

func (c *ChartOpts) XAxis(name string) opts.XAxis {
	return opts.XAxis{
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: c.TextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.Axis}},
	}
}

func (c *ChartOpts) YAxis(name string) opts.YAxis {
	return opts.YAxis{
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: c.TextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.Axis}},
		SplitLine: &opts.SplitLine{
			Show:      opts.Bool(true),
			LineStyle: &opts.LineStyle{Color: c.Grid},
		},
	}
}

func (c *ChartOpts) DataZoom() []opts.DataZoom {
	return []opts.DataZoom{
		{Type: "slider", Start: 0, End: dataZoomEndPercent},
		{Type: "inside"},
	}
}

func (c *ChartOpts) Tooltip() opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}
}

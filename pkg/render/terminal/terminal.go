// Package terminal renders sorting runs as animated bar charts and
// summary tables for the command line.
package terminal

import (
	"os"
	"strconv"
)

// Size limits for a rendered frame.
const (
	DefaultWidth  = 80
	DefaultHeight = 16
	MinHeight     = 4
	MaxBarWidth   = 3
)

// Config holds terminal rendering configuration.
type Config struct {
	Width   int
	Height  int
	NoColor bool
}

// NewConfig reads COLUMNS, LINES and NO_COLOR from the environment.
func NewConfig() Config {
	return Config{
		Width:   envInt("COLUMNS", DefaultWidth),
		Height:  min(envInt("LINES", DefaultHeight+4)-4, DefaultHeight),
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}

	return n
}

func (c Config) height() int {
	return max(c.Height, MinHeight)
}

// barWidth spreads n bars over the configured width, at least one column each.
func (c Config) barWidth(n int) int {
	if n == 0 {
		return 1
	}

	width := c.Width
	if width <= 0 {
		width = DefaultWidth
	}

	return min(max(width/n, 1), MaxBarWidth)
}

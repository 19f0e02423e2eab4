// Package render draws series histories as stacked ASCII charts for an
// interactive terminal session.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/guptarohit/asciigraph"

	"github.com/rspamd/rspamd-mon/internal/stats"
)

// clearScreen wipes the terminal and homes the cursor so each frame
// fully replaces the previous one.
const clearScreen = "\x1b[2J\x1b[H"

var (
	labelColor = color.New(color.Bold)
	lastColor  = color.New(color.FgMagenta)
	avgColor   = color.New(color.FgWhite)
	minColor   = color.New(color.FgGreen)
	maxColor   = color.New(color.FgRed)
)

// Terminal renders every series as an ASCII chart with a summary
// caption underneath, redrawing the whole screen per frame.
type Terminal struct {
	out    io.Writer
	height int
}

// NewTerminal creates a renderer writing to stdout with the given
// chart height in rows.
func NewTerminal(height int) *Terminal {
	return &Terminal{
		out:    os.Stdout,
		height: height,
	}
}

// WithOutput redirects frames to w, for tests.
func (t *Terminal) WithOutput(w io.Writer) *Terminal {
	t.out = w
	return t
}

// Render draws one frame covering all views. Series without any points
// yet are skipped. The frame is assembled off-screen and written in a
// single call to keep redraw flicker down.
func (t *Terminal) Render(views []stats.SeriesView) {
	var b strings.Builder
	b.WriteString(clearScreen)

	for _, v := range views {
		sum, ok := stats.Summarize(v.Values)
		if !ok {
			continue
		}
		b.WriteString(asciigraph.Plot(v.Values, asciigraph.Height(t.height)))
		b.WriteByte('\n')
		b.WriteString(caption(v.Label, sum))
		b.WriteString("\n\n")
	}

	io.WriteString(t.out, b.String())
}

func caption(label string, s stats.Summary) string {
	return fmt.Sprintf("[Label: %s] [LAST: %s] [AVG: %s] [MIN: %s] [MAX: %s]",
		labelColor.Sprint(label),
		lastColor.Sprintf("%.2f", s.Last),
		avgColor.Sprintf("%.2f", s.Mean),
		minColor.Sprintf("%.2f", s.Min),
		maxColor.Sprintf("%.2f", s.Max))
}

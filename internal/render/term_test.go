package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/rspamd/rspamd-mon/internal/stats"
)

func plainColors(t *testing.T) {
	t.Helper()
	was := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = was })
}

func view(name, label string, values ...float64) stats.SeriesView {
	return stats.SeriesView{
		Name:     name,
		Label:    label,
		Kind:     stats.KindRate,
		Capacity: 80,
		Values:   values,
	}
}

func TestTerminal_RenderFrame(t *testing.T) {
	plainColors(t)

	var buf bytes.Buffer
	term := NewTerminal(6).WithOutput(&buf)

	term.Render([]stats.SeriesView{view("rejected", "rejected msg/sec", 1, 2, 3)})

	out := buf.String()
	if !strings.HasPrefix(out, clearScreen) {
		t.Error("frame should start by clearing the screen")
	}
	if !strings.Contains(out, "┼") {
		t.Error("frame should contain a chart axis")
	}
	want := "[Label: rejected msg/sec] [LAST: 3.00] [AVG: 2.00] [MIN: 1.00] [MAX: 3.00]"
	if !strings.Contains(out, want) {
		t.Errorf("frame missing caption %q, got:\n%s", want, out)
	}
}

func TestTerminal_RenderSkipsEmptySeries(t *testing.T) {
	plainColors(t)

	var buf bytes.Buffer
	term := NewTerminal(6).WithOutput(&buf)

	term.Render([]stats.SeriesView{
		view("rejected", "rejected msg/sec"),
		view("total", "total msg/sec", 5),
	})

	out := buf.String()
	if strings.Contains(out, "rejected msg/sec") {
		t.Error("empty series should not be drawn")
	}
	if !strings.Contains(out, "total msg/sec") {
		t.Error("populated series should be drawn")
	}
}

func TestTerminal_RenderNothingToDraw(t *testing.T) {
	plainColors(t)

	var buf bytes.Buffer
	term := NewTerminal(6).WithOutput(&buf)

	term.Render([]stats.SeriesView{view("rejected", "rejected msg/sec")})

	if buf.String() != clearScreen {
		t.Errorf("frame with no drawable series should only clear, got %q", buf.String())
	}
}

func TestCaption_Formatting(t *testing.T) {
	plainColors(t)

	got := caption("avg scan time sec", stats.Summary{Last: 0.125, Min: 0.1, Max: 0.3, Mean: 0.2})
	want := "[Label: avg scan time sec] [LAST: 0.12] [AVG: 0.20] [MIN: 0.10] [MAX: 0.30]"
	if got != want {
		t.Errorf("caption = %q, want %q", got, want)
	}
}

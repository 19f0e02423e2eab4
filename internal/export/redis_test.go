package export

import (
	"testing"

	"github.com/rspamd/rspamd-mon/internal/stats"
)

func TestKeyFor(t *testing.T) {
	if got := keyFor("rejected"); got != "rspamd-mon:last:rejected" {
		t.Errorf("keyFor = %q, want %q", got, "rspamd-mon:last:rejected")
	}
}

func TestLatestValue(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   string
		ok     bool
	}{
		{"newest point wins", []float64{1, 2, 2.5}, "2.5", true},
		{"integral value stays short", []float64{10}, "10", true},
		{"negative rate preserved", []float64{-0.5}, "-0.5", true},
		{"empty window", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := latestValue(stats.SeriesView{Values: tt.values})
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}
}

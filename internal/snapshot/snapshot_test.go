package snapshot

import (
	"errors"
	"math"
	"testing"
)

func TestParse_RejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"actions":`},
		{"json array", `[1, 2, 3]`},
		{"json scalar", `42`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Parse returned %v, want ErrMalformed", err)
			}
		})
	}
}

func TestSnapshot_Actions(t *testing.T) {
	snap, err := Parse([]byte(`{
		"actions": {
			"reject": 10,
			"no action": 20,
			"add header": 5,
			"greylist": "not a number",
			"soft reject": -3,
			"rewrite subject": 2.5
		},
		"scanned": 35
	}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	counts, ok := snap.Actions()
	if !ok {
		t.Fatal("Actions() reported no actions object")
	}

	tests := []struct {
		action string
		want   uint64
	}{
		{"reject", 10},
		{"no action", 20},
		{"add header", 5},
		{"greylist", 0},        // string value
		{"soft reject", 0},     // negative value
		{"rewrite subject", 0}, // fractional value
		{"never seen", 0},      // absent key
	}
	for _, tt := range tests {
		if got := counts.Count(tt.action); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.action, got, tt.want)
		}
	}
}

func TestSnapshot_ActionsAbsent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no actions key", `{"scanned": 10}`},
		{"actions not an object", `{"actions": [1, 2]}`},
		{"actions null", `{"actions": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Parse([]byte(tt.body))
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if _, ok := snap.Actions(); ok {
				t.Error("Actions() reported an actions object")
			}
		})
	}
}

func TestSnapshot_ScanTimes(t *testing.T) {
	snap, err := Parse([]byte(`{"actions": {}, "scan_times": [0.1, null, 0.3, "x"]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	samples, ok := snap.ScanTimes()
	if !ok {
		t.Fatal("ScanTimes() reported no samples")
	}
	if len(samples) != 4 {
		t.Fatalf("got %d samples, want 4", len(samples))
	}
	if samples[0] != 0.1 || samples[2] != 0.3 {
		t.Errorf("numeric samples = %v/%v, want 0.1/0.3", samples[0], samples[2])
	}
	if !math.IsNaN(samples[1]) || !math.IsNaN(samples[3]) {
		t.Errorf("non-numeric samples = %v/%v, want NaN/NaN", samples[1], samples[3])
	}
}

func TestSnapshot_ScanTimesAbsent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no key", `{"actions": {}}`},
		{"not an array", `{"scan_times": {"a": 1}}`},
		{"null", `{"scan_times": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Parse([]byte(tt.body))
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if _, ok := snap.ScanTimes(); ok {
				t.Error("ScanTimes() reported samples")
			}
		})
	}
}

func TestSnapshot_EmptyScanTimes(t *testing.T) {
	snap, err := Parse([]byte(`{"scan_times": []}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	samples, ok := snap.ScanTimes()
	if !ok {
		t.Fatal("ScanTimes() reported no samples for an empty array")
	}
	if len(samples) != 0 {
		t.Errorf("got %d samples, want 0", len(samples))
	}
}

package stats

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// rateScale converts raw message counts so that dividing by an elapsed
// interval in milliseconds yields messages per second.
const rateScale = 1000

// ActionCounts holds the per-action counters of one snapshot.
type ActionCounts map[string]uint64

// Count returns the counter for action, or zero when absent.
func (c ActionCounts) Count(action string) uint64 {
	return c[action]
}

// Snapshot is the aggregator's view of one decoded statistics payload.
type Snapshot interface {
	// Actions returns the per-action counters, or false when the payload
	// carries none.
	Actions() (ActionCounts, bool)
	// ScanTimes returns the raw scan time samples, or false when the
	// payload carries none. Entries may be NaN.
	ScanTimes() ([]float64, bool)
}

// MissingFieldError reports a snapshot that lacks a field the aggregator
// cannot proceed without.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("snapshot missing required field %q", e.Field)
}

// Aggregator folds statistics snapshots into a fixed set of tracked
// series. A single mutex serializes updates and reads; callers on the
// read path receive copies and never hold the lock while rendering or
// exporting.
type Aggregator struct {
	mu     sync.Mutex
	specs  []MetricSpec
	series []*Series
	index  map[string]int
}

// NewAggregator builds one series per metric spec, each with a window of
// the given capacity.
func NewAggregator(specs []MetricSpec, window int) *Aggregator {
	a := &Aggregator{
		specs:  make([]MetricSpec, len(specs)),
		series: make([]*Series, len(specs)),
		index:  make(map[string]int, len(specs)),
	}
	copy(a.specs, specs)
	for i, spec := range a.specs {
		a.series[i] = NewSeries(spec.Kind, spec.Label, window)
		a.index[spec.Name] = i
	}
	return a
}

// UpdateFromSnapshot folds one snapshot into every tracked series using
// the wall-clock interval since the previous successful update.
//
// Action-backed rate metrics are processed first, in spec order: the raw
// counters named by each metric are summed, scaled to per-second units
// and fed to its series. The Total metric then receives the combined
// scaled total of that same cycle, and the ScanTime metric the mean of
// the usable scan time samples (NaN entries are dropped; an absent or
// unusable sample set skips the metric silently). A snapshot without
// action counters fails before any series is touched. The first series
// error aborts the cycle; series updated earlier in the same cycle keep
// their new point, prior points are never rewritten.
func (a *Aggregator) UpdateFromSnapshot(snap Snapshot, elapsed time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	actions, ok := snap.Actions()
	if !ok {
		return &MissingFieldError{Field: "actions"}
	}

	ms := elapsed.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	elapsedMs := uint64(ms)

	var cycleTotal float64
	for i, spec := range a.specs {
		if spec.Total || spec.ScanTime {
			continue
		}
		var raw uint64
		for _, action := range spec.Actions {
			raw += actions.Count(action)
		}
		scaled := float64(raw) * rateScale
		if err := a.series[i].Update(scaled, elapsedMs); err != nil {
			return fmt.Errorf("metric %s: %w", spec.Name, err)
		}
		cycleTotal += scaled
	}

	for i, spec := range a.specs {
		if !spec.Total {
			continue
		}
		if err := a.series[i].Update(cycleTotal, elapsedMs); err != nil {
			return fmt.Errorf("metric %s: %w", spec.Name, err)
		}
	}

	samples, ok := snap.ScanTimes()
	if !ok {
		return nil
	}
	mean, ok := meanIgnoringNaN(samples)
	if !ok {
		return nil
	}
	for i, spec := range a.specs {
		if !spec.ScanTime {
			continue
		}
		if err := a.series[i].Update(mean, elapsedMs); err != nil {
			return fmt.Errorf("metric %s: %w", spec.Name, err)
		}
	}
	return nil
}

// SeriesView is a point-in-time copy of one tracked series.
type SeriesView struct {
	Name     string
	Label    string
	Kind     Kind
	Capacity int
	Values   []float64
}

// Views returns a copy of every tracked series, in spec order.
func (a *Aggregator) Views() []SeriesView {
	a.mu.Lock()
	defer a.mu.Unlock()

	views := make([]SeriesView, len(a.specs))
	for i := range a.specs {
		views[i] = a.viewLocked(i)
	}
	return views
}

// View returns a copy of the series registered under name.
func (a *Aggregator) View(name string) (SeriesView, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, ok := a.index[name]
	if !ok {
		return SeriesView{}, false
	}
	return a.viewLocked(i), true
}

func (a *Aggregator) viewLocked(i int) SeriesView {
	return SeriesView{
		Name:     a.specs[i].Name,
		Label:    a.specs[i].Label,
		Kind:     a.specs[i].Kind,
		Capacity: a.series[i].Capacity(),
		Values:   a.series[i].History(),
	}
}

// meanIgnoringNaN returns the mean of the non-NaN samples using Neumaier
// compensated summation, or false when no usable sample exists. Plain
// accumulation loses low-order bits when large samples cancel; the
// compensation term carries them.
func meanIgnoringNaN(samples []float64) (float64, bool) {
	var sum, comp float64
	n := 0
	for _, v := range samples {
		if math.IsNaN(v) {
			continue
		}
		t := sum + v
		if math.Abs(sum) >= math.Abs(v) {
			comp += (sum - t) + v
		} else {
			comp += (v - t) + sum
		}
		sum = t
		n++
	}
	if n == 0 {
		return 0, false
	}
	return (sum + comp) / float64(n), true
}

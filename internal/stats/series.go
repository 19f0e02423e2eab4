package stats

import "math"

// Series couples a Counter with a bounded rolling window of its derived
// values. The window holds at most capacity points; once full, appending
// evicts the oldest point. Like Counter, a Series is not safe for
// concurrent use on its own.
type Series struct {
	counter  *Counter
	history  []float64
	capacity int
}

// NewSeries creates a series with an empty window. A capacity below one
// is treated as one.
func NewSeries(kind Kind, label string, capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{
		counter:  NewCounter(kind, label),
		history:  make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Update feeds one raw sample through the counter and appends the derived
// value to the window. A NaN result (a rate counter's first sample) is
// absorbed by the counter but kept out of the window, so charts never
// show the meaningless first diff. On error the window is untouched.
func (s *Series) Update(raw float64, elapsedMs uint64) error {
	v, err := s.counter.Update(raw, elapsedMs)
	if err != nil {
		return err
	}
	if math.IsNaN(v) {
		return nil
	}
	if len(s.history) >= s.capacity {
		s.history = s.history[1:]
	}
	s.history = append(s.history, v)
	return nil
}

// History returns a copy of the window, oldest value first.
func (s *Series) History() []float64 {
	out := make([]float64, len(s.history))
	copy(out, s.history)
	return out
}

// Last returns the newest value in the window, or false when empty.
func (s *Series) Last() (float64, bool) {
	if len(s.history) == 0 {
		return 0, false
	}
	return s.history[len(s.history)-1], true
}

// Len returns the number of values currently in the window.
func (s *Series) Len() int {
	return len(s.history)
}

// Capacity returns the maximum window length.
func (s *Series) Capacity() int {
	return s.capacity
}

// Label returns the display label of the underlying counter.
func (s *Series) Label() string {
	return s.counter.Label()
}

// Kind returns the derivation kind of the underlying counter.
func (s *Series) Kind() Kind {
	return s.counter.Kind()
}

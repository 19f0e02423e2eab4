// Package stats implements the derivation engine of the monitor: counters
// that turn raw samples into plottable values, bounded series that keep a
// rolling window of those values, and an aggregator that folds whole
// statistics snapshots into a set of tracked series.
package stats

import (
	"errors"
	"math"
)

// ErrZeroElapsed is returned when a rate derivation is asked to divide by
// a zero-length interval. The offending sample still replaces the stored
// previous sample, so the next update diffs against it.
var ErrZeroElapsed = errors.New("elapsed interval is zero")

// Kind selects the derivation a Counter applies to raw samples.
type Kind int

const (
	// KindRate derives a per-millisecond rate from successive samples.
	KindRate Kind = iota
	// KindGauge passes samples through unchanged.
	KindGauge
)

func (k Kind) String() string {
	if k == KindGauge {
		return "gauge"
	}
	return "rate"
}

// Counter derives one plottable value per raw sample. A rate counter
// diffs successive absolute samples and divides by the elapsed interval;
// a gauge counter reports the sample as-is. Counters are not safe for
// concurrent use; the Aggregator serializes access.
type Counter struct {
	kind  Kind
	label string
	prev  float64 // NaN until the first sample arrives
}

// NewCounter creates a counter with no previous sample.
func NewCounter(kind Kind, label string) *Counter {
	return &Counter{kind: kind, label: label, prev: math.NaN()}
}

// Update consumes one raw sample and returns the derived value.
//
// For rate counters the first call returns NaN because there is no
// previous sample to diff against, and a zero elapsed interval returns
// ErrZeroElapsed; in both cases the sample is still recorded, so a later
// update with a sane interval recovers. A sample smaller than its
// predecessor (an upstream counter reset) produces a negative rate.
func (c *Counter) Update(raw float64, elapsedMs uint64) (float64, error) {
	switch c.kind {
	case KindRate:
		prev := c.prev
		c.prev = raw
		if elapsedMs == 0 {
			return 0, ErrZeroElapsed
		}
		return (raw - prev) / float64(elapsedMs), nil
	default:
		c.prev = raw
		return raw, nil
	}
}

// Label returns the display label the counter was created with.
func (c *Counter) Label() string {
	return c.label
}

// Kind returns the derivation kind.
func (c *Counter) Kind() Kind {
	return c.kind
}

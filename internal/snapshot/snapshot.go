// Package snapshot decodes raw statistics payloads into the view the
// derivation engine consumes. Extraction is deliberately tolerant:
// servers of different vintages disagree on which fields they emit, so
// anything that is not a usable number degrades to zero or NaN instead
// of failing the cycle.
package snapshot

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/rspamd/rspamd-mon/internal/stats"
)

// ErrMalformed is returned when a payload is not a JSON object at all.
var ErrMalformed = errors.New("malformed statistics payload")

// Snapshot is one decoded statistics payload.
type Snapshot struct {
	root gjson.Result
}

// Parse validates and wraps a raw payload. The payload must be a JSON
// object; field-level problems are left for the accessors to absorb.
func Parse(body []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: root is not an object", ErrMalformed)
	}
	return &Snapshot{root: root}, nil
}

// Actions returns the per-action counters, or false when the payload has
// no actions object. Values that are not non-negative integers count as
// zero.
func (s *Snapshot) Actions() (stats.ActionCounts, bool) {
	obj := s.root.Get("actions")
	if !obj.IsObject() {
		return nil, false
	}
	counts := make(stats.ActionCounts)
	obj.ForEach(func(key, value gjson.Result) bool {
		counts[key.String()] = counterValue(value)
		return true
	})
	return counts, true
}

// ScanTimes returns the raw scan time samples, or false when the payload
// has none. Non-numeric entries are preserved as NaN so the caller
// decides how to treat them.
func (s *Snapshot) ScanTimes() ([]float64, bool) {
	arr := s.root.Get("scan_times")
	if !arr.IsArray() {
		return nil, false
	}
	items := arr.Array()
	out := make([]float64, len(items))
	for i, item := range items {
		if item.Type == gjson.Number {
			out[i] = item.Float()
		} else {
			out[i] = math.NaN()
		}
	}
	return out, true
}

// counterValue extracts an unsigned counter. Negative, fractional and
// non-numeric values are treated as zero rather than rejected.
func counterValue(v gjson.Result) uint64 {
	if v.Type != gjson.Number {
		return 0
	}
	f := v.Float()
	if f < 0 || f != math.Trunc(f) {
		return 0
	}
	return uint64(f)
}

// Interface compliance checked at compile time.
var _ stats.Snapshot = (*Snapshot)(nil)

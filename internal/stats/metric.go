package stats

// MetricSpec describes one tracked metric.
//
// A rate metric sums the snapshot counters named in Actions. The metric
// marked Total ignores Actions and derives from the combined raw total of
// all action-backed rate metrics in the same cycle. The metric marked
// ScanTime derives from the snapshot's scan time samples and is normally
// a gauge. At most one Total and one ScanTime metric make sense per set;
// the config layer enforces that.
type MetricSpec struct {
	Name     string
	Label    string
	Kind     Kind
	Actions  []string
	Total    bool
	ScanTime bool
}

// DefaultMetricSet returns the tracked metrics used when no metric file
// is configured: per-verdict message rates, their combined total, and the
// average scan time reported by the server.
func DefaultMetricSet() []MetricSpec {
	return []MetricSpec{
		{Name: "rejected", Label: "rejected msg/sec", Kind: KindRate, Actions: []string{"reject"}},
		{Name: "clean", Label: "clean msg/sec", Kind: KindRate, Actions: []string{"no action"}},
		{Name: "flagged", Label: "flagged msg/sec", Kind: KindRate, Actions: []string{"add header", "rewrite subject"}},
		{Name: "total", Label: "total msg/sec", Kind: KindRate, Total: true},
		{Name: "scan-time", Label: "avg scan time sec", Kind: KindGauge, ScanTime: true},
	}
}

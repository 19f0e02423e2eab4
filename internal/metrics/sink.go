package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or propagate errors.
// If the metrics backend is unavailable, implementations log warnings and continue.
type Sink interface {
	// Poller metrics
	PollStarted()
	PollCompleted(duration time.Duration, err error)
	BackoffApplied(delay time.Duration)
	ConsecutiveFailures(count int)

	// Series metrics
	SeriesPoint(name string, value float64)
	SeriesLength(name string, length int)
}

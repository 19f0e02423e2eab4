package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) PollStarted()                                    {}
func (n *NoopSink) PollCompleted(duration time.Duration, err error) {}
func (n *NoopSink) BackoffApplied(delay time.Duration)              {}
func (n *NoopSink) ConsecutiveFailures(count int)                   {}
func (n *NoopSink) SeriesPoint(name string, value float64)          {}
func (n *NoopSink) SeriesLength(name string, length int)            {}

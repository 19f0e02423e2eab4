package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	// Poller metrics
	pollsTotal          prometheus.Counter
	pollErrorsTotal     prometheus.Counter
	pollDuration        prometheus.Histogram
	backoffDelay        prometheus.Histogram
	consecutiveFailures prometheus.Gauge

	// Series metrics
	seriesValue  *prometheus.GaugeVec
	seriesPoints *prometheus.GaugeVec
}

// NewPrometheusSink creates a new Prometheus metrics sink.
// If registration fails, it logs a warning and returns a functional sink.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{}
	s.initPollerMetrics(reg)
	s.initSeriesMetrics(reg)
	return s
}

func (s *PrometheusSink) initPollerMetrics(reg prometheus.Registerer) {
	s.pollsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rspamdmon_poller_cycles_total",
		Help: "Total number of poll cycles started.",
	})
	s.pollErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rspamdmon_poller_errors_total",
		Help: "Total number of failed poll cycles.",
	})
	s.pollDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rspamdmon_poller_duration_seconds",
		Help:    "Duration of each poll cycle in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	s.backoffDelay = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rspamdmon_poller_backoff_seconds",
		Help:    "Retry delay applied after a failed poll cycle in seconds.",
		Buckets: []float64{0.5, 1, 2, 4, 8, 16, 32, 64},
	})
	s.consecutiveFailures = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rspamdmon_poller_consecutive_failures",
		Help: "Current run of consecutive failed poll cycles.",
	})

	s.register(reg, s.pollsTotal, "rspamdmon_poller_cycles_total")
	s.register(reg, s.pollErrorsTotal, "rspamdmon_poller_errors_total")
	s.register(reg, s.pollDuration, "rspamdmon_poller_duration_seconds")
	s.register(reg, s.backoffDelay, "rspamdmon_poller_backoff_seconds")
	s.register(reg, s.consecutiveFailures, "rspamdmon_poller_consecutive_failures")
}

func (s *PrometheusSink) initSeriesMetrics(reg prometheus.Registerer) {
	s.seriesValue = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rspamdmon_series_value",
		Help: "Latest derived value of each tracked metric.",
	}, []string{"metric"})

	s.seriesPoints = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rspamdmon_series_points",
		Help: "Number of points currently held in each metric's window.",
	}, []string{"metric"})

	s.register(reg, s.seriesValue, "rspamdmon_series_value")
	s.register(reg, s.seriesPoints, "rspamdmon_series_points")
}

// register attempts to register a collector, logging any errors without propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

// Poller metrics implementation

func (s *PrometheusSink) PollStarted() {
	s.pollsTotal.Inc()
}

func (s *PrometheusSink) PollCompleted(duration time.Duration, err error) {
	s.pollDuration.Observe(duration.Seconds())
	if err != nil {
		s.pollErrorsTotal.Inc()
	}
}

func (s *PrometheusSink) BackoffApplied(delay time.Duration) {
	s.backoffDelay.Observe(delay.Seconds())
}

func (s *PrometheusSink) ConsecutiveFailures(count int) {
	s.consecutiveFailures.Set(float64(count))
}

// Series metrics implementation

func (s *PrometheusSink) SeriesPoint(name string, value float64) {
	s.seriesValue.WithLabelValues(name).Set(value)
}

func (s *PrometheusSink) SeriesLength(name string, length int) {
	s.seriesPoints.WithLabelValues(name).Set(float64(length))
}

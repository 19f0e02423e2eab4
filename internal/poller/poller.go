// Package poller drives the monitor: it fetches statistics payloads on a
// fixed cadence, folds them into the aggregator and fans fresh views out
// to the renderer and publishers. Failed cycles back off exponentially;
// a bounded run of consecutive failures aborts the loop.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rspamd/rspamd-mon/internal/metrics"
	"github.com/rspamd/rspamd-mon/internal/snapshot"
	"github.com/rspamd/rspamd-mon/internal/stats"
)

// ErrTooManyFailures is returned by Run when consecutive poll failures
// exceed the configured limit.
var ErrTooManyFailures = errors.New("too many consecutive poll failures")

// Fetcher retrieves one raw statistics payload.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Renderer consumes fresh series views after a successful cycle.
type Renderer interface {
	Render(views []stats.SeriesView)
}

// Publisher mirrors fresh series views to an external store.
// Implementations are best-effort and must not return errors.
type Publisher interface {
	Publish(ctx context.Context, views []stats.SeriesView)
}

// Config holds the polling parameters.
type Config struct {
	// Interval between cycle starts while the endpoint is healthy. The
	// delay doubles after every failed cycle and snaps back on success.
	Interval time.Duration
	// MaxFailures bounds the run of consecutive failures tolerated
	// before Run gives up.
	MaxFailures int
}

// Poller owns the fetch/update/render loop around one aggregator.
type Poller struct {
	config    Config
	fetcher   Fetcher
	agg       *stats.Aggregator
	renderer  Renderer      // optional, nil = disabled
	publisher Publisher     // optional, nil = disabled
	metrics   metrics.Sink
	log       *zap.Logger
	clock     func() time.Time

	mu          sync.Mutex
	lastSuccess time.Time
	cycles      int
}

// New creates a poller with metrics disabled and no renderer attached.
func New(config Config, fetcher Fetcher, agg *stats.Aggregator, log *zap.Logger) *Poller {
	return &Poller{
		config:  config,
		fetcher: fetcher,
		agg:     agg,
		metrics: metrics.NewNoopSink(),
		log:     log,
		clock:   time.Now,
	}
}

// WithRenderer attaches a renderer invoked after each successful cycle.
func (p *Poller) WithRenderer(r Renderer) *Poller {
	p.renderer = r
	return p
}

// WithPublisher attaches a best-effort external publisher.
func (p *Poller) WithPublisher(pub Publisher) *Poller {
	p.publisher = pub
	return p
}

// WithMetrics attaches a metrics sink to the poller.
func (p *Poller) WithMetrics(sink metrics.Sink) *Poller {
	p.metrics = sink
	return p
}

// WithClock overrides the wall clock, for tests.
func (p *Poller) WithClock(clock func() time.Time) *Poller {
	p.clock = clock
	return p
}

// Run polls until the context is cancelled or too many consecutive
// cycles fail. The first cycle starts one interval after Run is called.
func (p *Poller) Run(ctx context.Context) error {
	delay := p.config.Interval
	failures := 0

	p.log.Info("started",
		zap.Duration("interval", p.config.Interval),
		zap.Int("max_failures", p.config.MaxFailures))

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("stopped")
			return ctx.Err()
		case <-timer.C:
		}

		if err := p.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				p.log.Info("stopped")
				return ctx.Err()
			}
			failures++
			p.metrics.ConsecutiveFailures(failures)
			if failures > p.config.MaxFailures {
				p.log.Error("giving up",
					zap.Int("consecutive_failures", failures),
					zap.Error(err))
				return fmt.Errorf("%w: %v", ErrTooManyFailures, err)
			}
			delay *= 2
			p.metrics.BackoffApplied(delay)
			p.log.Warn("poll failed",
				zap.Int("consecutive_failures", failures),
				zap.Duration("retry_in", delay),
				zap.Error(err))
		} else {
			failures = 0
			delay = p.config.Interval
			p.metrics.ConsecutiveFailures(0)
		}

		timer.Reset(delay)
	}
}

// cycle runs one fetch/decode/update pass and fans out fresh views.
func (p *Poller) cycle(ctx context.Context) error {
	start := p.clock()
	p.metrics.PollStarted()

	body, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.metrics.PollCompleted(p.clock().Sub(start), err)
		return fmt.Errorf("fetch: %w", err)
	}

	snap, err := snapshot.Parse(body)
	if err != nil {
		p.metrics.PollCompleted(p.clock().Sub(start), err)
		return fmt.Errorf("decode: %w", err)
	}

	// Rates derive from the measured wall-clock gap between successful
	// updates, not from the nominal interval: backoff and scheduling
	// jitter would otherwise distort them. The first cycle has no gap
	// yet and uses the interval as a stand-in; its rates are suppressed
	// baselines anyway.
	now := p.clock()
	p.mu.Lock()
	elapsed := p.config.Interval
	if !p.lastSuccess.IsZero() {
		elapsed = now.Sub(p.lastSuccess)
	}
	p.mu.Unlock()

	if err := p.agg.UpdateFromSnapshot(snap, elapsed); err != nil {
		p.metrics.PollCompleted(p.clock().Sub(start), err)
		return fmt.Errorf("update: %w", err)
	}

	p.mu.Lock()
	p.lastSuccess = now
	p.cycles++
	cycles := p.cycles
	p.mu.Unlock()

	p.metrics.PollCompleted(p.clock().Sub(start), nil)

	views := p.agg.Views()
	for _, v := range views {
		p.metrics.SeriesLength(v.Name, len(v.Values))
		if len(v.Values) > 0 {
			p.metrics.SeriesPoint(v.Name, v.Values[len(v.Values)-1])
		}
	}

	p.log.Debug("poll ok",
		zap.Duration("elapsed", elapsed),
		zap.Int("cycles", cycles))

	// The first cycle only establishes baselines; drawing an all-empty
	// screen would just flicker.
	if p.renderer != nil && cycles > 1 {
		p.renderer.Render(views)
	}
	if p.publisher != nil {
		p.publisher.Publish(ctx, views)
	}
	return nil
}

// LastSuccess returns the wall-clock time of the newest successful
// cycle, or the zero time before the first one.
func (p *Poller) LastSuccess() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSuccess
}

// Cycles returns the number of successful cycles so far.
func (p *Poller) Cycles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cycles
}

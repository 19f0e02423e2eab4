// Package export publishes derived values to external stores. Publishers
// are best-effort side channels: they log failures and never surface
// errors to the polling loop.
package export

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rspamd/rspamd-mon/internal/stats"
)

// keyPrefix namespaces the latest-value keys written by the publisher.
const keyPrefix = "rspamd-mon:last:"

// RedisPublisher mirrors the latest derived value of every tracked
// series into Redis, one key per metric with a TTL so stale values
// expire when the monitor stops.
type RedisPublisher struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisPublisher creates a publisher writing values with the given TTL.
func NewRedisPublisher(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, ttl: ttl, log: log}
}

// Publish pipelines one SET per series that has at least one point.
func (p *RedisPublisher) Publish(ctx context.Context, views []stats.SeriesView) {
	pipe := p.client.Pipeline()
	queued := 0
	for _, view := range views {
		value, ok := latestValue(view)
		if !ok {
			continue
		}
		pipe.Set(ctx, keyFor(view.Name), value, p.ttl)
		queued++
	}
	if queued == 0 {
		return
	}
	if _, err := pipe.Exec(ctx); err != nil {
		p.log.Warn("publish failed", zap.Int("keys", queued), zap.Error(err))
	}
}

func keyFor(name string) string {
	return keyPrefix + name
}

// latestValue formats the newest point of a series for storage.
func latestValue(view stats.SeriesView) (string, bool) {
	if len(view.Values) == 0 {
		return "", false
	}
	return strconv.FormatFloat(view.Values[len(view.Values)-1], 'f', -1, 64), true
}

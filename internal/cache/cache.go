// Package cache keeps finished analysis runs in Redis. Runs never change
// after they are saved, so entries only expire.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brand-scope/internal/metrics"
	"github.com/sells-group/brand-scope/internal/model"
)

// RunCache stores SearchResults keyed by mode id.
type RunCache interface {
	Get(ctx context.Context, modeID string) (*model.SearchResults, error)
	Set(ctx context.Context, res *model.SearchResults) error
}

// Redis is a RunCache backed by go-redis.
type Redis struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	metrics *metrics.Metrics
}

// Option configures a Redis cache.
type Option func(*Redis)

// WithMetrics counts hits, misses and errors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Redis) { r.metrics = m }
}

// New wraps an existing client.
func New(client *redis.Client, prefix string, ttl time.Duration, opts ...Option) *Redis {
	if ttl <= 0 {
		ttl = time.Hour
	}
	r := &Redis{client: client, prefix: prefix, ttl: ttl}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Open parses a redis:// URL, connects and pings.
func Open(ctx context.Context, url, prefix string, ttl time.Duration, opts ...Option) (*Redis, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "cache: parse redis url")
	}
	client := redis.NewClient(o)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "cache: ping redis")
	}
	return New(client, prefix, ttl, opts...), nil
}

func (r *Redis) key(modeID string) string {
	return r.prefix + "run:" + modeID
}

// Get returns the cached run, or nil on a miss.
func (r *Redis) Get(ctx context.Context, modeID string) (*model.SearchResults, error) {
	data, err := r.client.Get(ctx, r.key(modeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.count("miss")
		return nil, nil
	}
	if err != nil {
		r.count("error")
		return nil, eris.Wrapf(err, "cache: get run %s", modeID)
	}

	var res model.SearchResults
	if err := json.Unmarshal(data, &res); err != nil {
		r.count("error")
		return nil, eris.Wrapf(err, "cache: decode run %s", modeID)
	}
	r.count("hit")
	return &res, nil
}

// Set stores res under its mode id.
func (r *Redis) Set(ctx context.Context, res *model.SearchResults) error {
	if res == nil || res.ModeID == "" {
		return nil
	}
	data, err := json.Marshal(res)
	if err != nil {
		return eris.Wrap(err, "cache: encode run")
	}
	if err := r.client.Set(ctx, r.key(res.ModeID), data, r.ttl).Err(); err != nil {
		return eris.Wrapf(err, "cache: set run %s", res.ModeID)
	}
	zap.L().Debug("cache: stored run", zap.String("mode_id", res.ModeID), zap.Duration("ttl", r.ttl))
	return nil
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) count(result string) {
	if r.metrics != nil {
		r.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

var _ RunCache = (*Redis)(nil)

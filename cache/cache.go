// Package cache is the read-through cache in front of the repositories.
// Values are stored as JSON under keys built in keys.go.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

const (
	LiveTTL   = 2 * time.Minute
	ListTTL   = 5 * time.Minute
	StatsTTL  = 10 * time.Minute
	DetailTTL = 20 * time.Minute
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, keys ...string) error
}

type Cache struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, logger: logger}
}

// Remove drops keys. The writes that call it have already committed, so a
// failure only leaves a stale entry until its TTL runs out; it is logged.
func (c *Cache) Remove(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.store.Remove(ctx, keys...); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.Any("error", err))
	}
}

// GetOrCreate returns the cached value for key or builds it with factory and
// stores it for ttl. Store failures degrade to calling factory.
func GetOrCreate[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, factory func(ctx context.Context) (T, error)) (T, error) {
	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var cached T
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			return cached, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key), slog.Any("error", jsonErr))
	case !errors.Is(err, ErrMiss):
		c.logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	value, err := factory(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to encode cache entry", slog.String("key", key), slog.Any("error", err))
		return value, nil
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return value, nil
}

// Noop never holds anything; used when no Redis is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error)              { return nil, ErrMiss }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Remove(context.Context, ...string) error                  { return nil }

package backend

import (
	"context"
	"encoding/json"
	"time"

	"github.com/balonis/storefront/pkg/logger"
)

// LookupCache is the key/value surface the cached client needs.
type LookupCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	LookupKey(name string) string
}

// CachedClient serves categories, colors and sources from a shared cache
// and falls through to the backend on a miss or any cache failure.
type CachedClient struct {
	*Client
	cache LookupCache
	ttl   time.Duration
	logg  *logger.Logger
}

func NewCachedClient(client *Client, cache LookupCache, ttl time.Duration, logg *logger.Logger) *CachedClient {
	if logg == nil {
		logg = logger.Nop()
	}
	return &CachedClient{Client: client, cache: cache, ttl: ttl, logg: logg}
}

func (c *CachedClient) Categories(ctx context.Context) ([]Category, error) {
	return cached(ctx, c, "categories", c.Client.Categories)
}

func (c *CachedClient) Colors(ctx context.Context) ([]Color, error) {
	return cached(ctx, c, "colors", c.Client.Colors)
}

func (c *CachedClient) Sources(ctx context.Context) ([]Source, error) {
	return cached(ctx, c, "sources", c.Client.Sources)
}

func cached[T any](ctx context.Context, c *CachedClient, name string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if c.cache == nil || c.ttl <= 0 {
		return fetch(ctx)
	}

	key := c.cache.LookupKey(name)
	logCtx := c.logg.WithField(ctx, "cache_key", key)

	if raw, err := c.cache.Get(ctx, key); err == nil {
		var items []T
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return items, nil
		}
		c.logg.Warn(logCtx, "lookup.cache.corrupt")
	}

	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(items)
	if err != nil {
		c.logg.Error(logCtx, "lookup.cache.encode", err)
		return items, nil
	}
	if err := c.cache.Set(ctx, key, string(payload), c.ttl); err != nil {
		c.logg.Warn(logCtx, "lookup.cache.write_failed")
	}
	return items, nil
}

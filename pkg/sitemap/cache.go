package sitemap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// DefaultCacheKey is the Redis key of the cached sitemap.
const DefaultCacheKey = "movieflair:sitemap"

// Cache serves a generated sitemap from Redis until it expires. Redis
// failures are logged and fall through to the wrapped generator.
type Cache struct {
	client backend.Cmdable
	next   Generator
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL sets how long a sitemap stays cached.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithKey sets the Redis key.
func WithKey(key string) CacheOption {
	return func(c *Cache) {
		c.key = key
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache wraps next with a Redis cache.
func NewCache(client backend.Cmdable, next Generator, opts ...CacheOption) *Cache {
	c := &Cache{
		client: client,
		next:   next,
		key:    DefaultCacheKey,
		ttl:    MaxAge,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate implements Generator.
func (c *Cache) Generate(ctx context.Context) ([]byte, error) {
	cached, err := c.client.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, backend.Nil):
		c.logger.Warn("sitemap cache read failed", "key", c.key, "error", err)
	}

	body, err := c.next.Generate(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, c.key, body, c.ttl).Err(); err != nil {
		c.logger.Warn("sitemap cache write failed", "key", c.key, "error", err)
	}
	return body, nil
}

// Invalidate drops the cached sitemap.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

package dashboard

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(ctx context.Context, key string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts.
type ChartCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedChart
}

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		entries: make(map[string]cachedChart),
	}
}

// GetOrRender returns a cached entry or renders/stores a new one.
func (c *ChartCache) GetOrRender(_ context.Context, key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

func (c *ChartCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedChart{
		html:    html,
		expires: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// RedisRenderCache shares rendered charts between processes. A nil client
// renders every time.
type RedisRenderCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRenderCache builds a Redis-backed render cache.
func NewRedisRenderCache(client *redis.Client, prefix string, ttl time.Duration) *RedisRenderCache {
	if prefix == "" {
		prefix = "bizdash:chart"
	}
	return &RedisRenderCache{client: client, prefix: prefix, ttl: ttl}
}

// GetOrRender reads key from Redis or renders and stores it.
func (c *RedisRenderCache) GetOrRender(ctx context.Context, key string, render func() (string, error)) (string, error) {
	if c == nil || c.client == nil {
		return render()
	}
	full := c.prefix + ":" + key
	html, err := c.client.Get(ctx, full).Result()
	if err == nil {
		return html, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", err
	}
	html, err = render()
	if err != nil {
		return "", err
	}
	if err := c.client.Set(ctx, full, html, c.ttl).Err(); err != nil {
		return "", err
	}
	return html, nil
}

// configHash returns a deterministic hash for a chart configuration.
func configHash(cfg map[string]any) string {
	if len(cfg) == 0 {
		return "empty"
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/goliatone/go-bizdash/components/alerts"
	"github.com/goliatone/go-bizdash/components/daterange"
	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

const (
	defaultCachePrefix = "bizdash:bundle"
	// InvalidationChannel carries version bumps between processes.
	InvalidationChannel = "bizdash.bundle.bump"
)

// Cache wraps Redis with a global version so every key can be invalidated
// at once.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache builds a cache. A nil client disables caching.
func NewCache(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = defaultCachePrefix
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache) versionKey() string { return c.prefix + ":version" }

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, c.versionKey()).Int64()
	if errors.Is(err, redis.Nil) || (err == nil && ver <= 0) {
		if err := c.client.Set(ctx, c.versionKey(), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes a cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	if c == nil {
		return defaultCachePrefix + ":" + strings.Join(parts, ":"), nil
	}
	joined := c.prefix + ":" + strings.Join(parts, ":")
	if c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return joined + ":v" + strconv.FormatInt(ver, 10), nil
}

// FetchJSON loads key into dest, populating it with loader on a miss.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("analytics: cache loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every key by incrementing the version and announcing it.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, c.versionKey()).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, InvalidationChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation applies version bumps published by other processes
// until ctx is done.
func (c *Cache) ListenForInvalidation(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, InvalidationChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil {
					_ = c.client.Set(ctx, c.versionKey(), ver, 0).Err()
					continue
				}
				_ = c.client.Incr(ctx, c.versionKey()).Err()
			}
		}
	}()
	return nil
}

type bundleSource interface {
	dashboard.DataSource
	alerts.Source
}

// CachedSource serves raw bundles from the cache and falls back to the
// wrapped source. Cache failures are logged and bypassed. Aggregates are
// always recomputed from the bundles by the dashboard.
type CachedSource struct {
	source bundleSource
	cache  *Cache
	logger *zap.Logger
}

var _ bundleSource = (*CachedSource)(nil)

// NewCachedSource wraps source. A nil logger discards output.
func NewCachedSource(source bundleSource, cache *Cache, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{source: source, cache: cache, logger: logger}
}

// Invalidate drops every cached bundle.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// FetchMarketing implements dashboard.DataSource.
func (s *CachedSource) FetchMarketing(ctx context.Context, sel daterange.Selector) (dashboard.MarketingBundle, error) {
	var out dashboard.MarketingBundle
	err := cached(ctx, s, AreaMarketing, sel, &out, func(ctx context.Context) (any, error) {
		return s.source.FetchMarketing(ctx, sel)
	})
	return out, err
}

// FetchFinance implements dashboard.DataSource.
func (s *CachedSource) FetchFinance(ctx context.Context, sel daterange.Selector) (dashboard.FinanceBundle, error) {
	var out dashboard.FinanceBundle
	err := cached(ctx, s, AreaFinance, sel, &out, func(ctx context.Context) (any, error) {
		return s.source.FetchFinance(ctx, sel)
	})
	return out, err
}

// FetchSales implements dashboard.DataSource.
func (s *CachedSource) FetchSales(ctx context.Context, sel daterange.Selector) (dashboard.SalesBundle, error) {
	var out dashboard.SalesBundle
	err := cached(ctx, s, AreaSales, sel, &out, func(ctx context.Context) (any, error) {
		return s.source.FetchSales(ctx, sel)
	})
	return out, err
}

// FetchCrossAnalysis implements dashboard.DataSource.
func (s *CachedSource) FetchCrossAnalysis(ctx context.Context, sel daterange.Selector) (dashboard.CrossAnalysisBundle, error) {
	var out dashboard.CrossAnalysisBundle
	err := cached(ctx, s, AreaCrossAnalysis, sel, &out, func(ctx context.Context) (any, error) {
		return s.source.FetchCrossAnalysis(ctx, sel)
	})
	return out, err
}

// FetchAlerts implements alerts.Source. Alerts change status through
// actions, so they are never cached.
func (s *CachedSource) FetchAlerts(ctx context.Context, sel daterange.Selector) ([]alerts.Alert, error) {
	return s.source.FetchAlerts(ctx, sel)
}

func cached[T any](ctx context.Context, s *CachedSource, area Area, sel daterange.Selector, dest *T, loader func(context.Context) (any, error)) error {
	var (
		loaded    bool
		loadErr   error
		loadValue any
	)
	tracked := func(ctx context.Context) (any, error) {
		loaded = true
		loadValue, loadErr = loader(ctx)
		return loadValue, loadErr
	}
	key, err := s.cache.BuildKey(ctx, string(area), string(sel))
	if err == nil {
		err = s.cache.FetchJSON(ctx, key, dest, tracked)
		if err == nil {
			return nil
		}
	}
	if loaded && loadErr != nil {
		return loadErr
	}
	s.logger.Warn("bundle cache unavailable",
		zap.String("area", string(area)),
		zap.String("range", string(sel)),
		zap.Error(err),
	)
	if !loaded {
		loadValue, loadErr = loader(ctx)
	}
	if loadErr != nil {
		return loadErr
	}
	typed, ok := loadValue.(T)
	if !ok {
		return errors.New("analytics: unexpected bundle type")
	}
	*dest = typed
	return nil
}

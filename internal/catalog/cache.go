package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
)

const categoriesCacheKey = "categories"

// SharedCache mirrors category snapshots across instances. *redis.Client satisfies it.
type SharedCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(parts ...string) string
}

// CachedStore remembers the category list for the lifetime of the process. Product and profile
// reads pass straight through.
type CachedStore struct {
	Store

	shared SharedCache
	ttl    time.Duration
	logg   *logger.Logger

	group singleflight.Group

	mu         sync.RWMutex
	categories []Category
	loaded     bool
}

// CacheOption customizes a CachedStore.
type CacheOption func(*CachedStore)

// WithSharedCache mirrors categories into a shared cache with the given TTL.
func WithSharedCache(shared SharedCache, ttl time.Duration) CacheOption {
	return func(c *CachedStore) {
		c.shared = shared
		c.ttl = ttl
	}
}

// WithCacheLogger sets the logger used for shared cache failures.
func WithCacheLogger(logg *logger.Logger) CacheOption {
	return func(c *CachedStore) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// NewCachedStore wraps store with a category cache.
func NewCachedStore(store Store, opts ...CacheOption) *CachedStore {
	c := &CachedStore{Store: store, logg: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListCategories returns the cached list, fetching it at most once concurrently. Failures are not
// cached so the next call retries.
func (c *CachedStore) ListCategories(ctx context.Context) ([]Category, error) {
	if cached, ok := c.cached(); ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(categoriesCacheKey, func() (any, error) {
		if cached, ok := c.cached(); ok {
			return cached, nil
		}
		if shared, ok := c.readShared(ctx); ok {
			c.remember(shared)
			return shared, nil
		}
		categories, err := c.Store.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		c.remember(categories)
		c.writeShared(ctx, categories)
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneCategories(v.([]Category)), nil
}

func (c *CachedStore) cached() ([]Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	return cloneCategories(c.categories), true
}

func (c *CachedStore) remember(categories []Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = cloneCategories(categories)
	c.loaded = true
}

func (c *CachedStore) readShared(ctx context.Context) ([]Category, bool) {
	if c.shared == nil {
		return nil, false
	}
	raw, err := c.shared.Get(ctx, c.shared.CatalogKey(categoriesCacheKey))
	if err != nil || raw == "" {
		return nil, false
	}
	var categories []Category
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "discarding malformed shared category cache")
		return nil, false
	}
	return categories, true
}

func (c *CachedStore) writeShared(ctx context.Context, categories []Category) {
	if c.shared == nil {
		return
	}
	payload, err := json.Marshal(categories)
	if err != nil {
		return
	}
	if err := c.shared.Set(ctx, c.shared.CatalogKey(categoriesCacheKey), string(payload), c.ttl); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "shared category cache write failed")
	}
}

func cloneCategories(in []Category) []Category {
	out := make([]Category, len(in))
	copy(out, in)
	return out
}

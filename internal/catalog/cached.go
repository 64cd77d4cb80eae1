package catalog

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kidspark/kidspark-engine/internal/health"
	"github.com/kidspark/kidspark-engine/internal/model"
)

const cacheKey = "activities"

// CachedSource wraps a Source with a TTL cache so every ranking pass does
// not refetch the whole catalog. Errors are never cached.
type CachedSource struct {
	inner Source
	cache *gocache.Cache
}

func NewCachedSource(inner Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// HealthPing delegates to the wrapped source when it exposes a probe.
func (c *CachedSource) HealthPing(ctx context.Context) error {
	if p, ok := c.inner.(health.HealthPinger); ok {
		return p.HealthPing(ctx)
	}
	return nil
}

func (c *CachedSource) GetAll(ctx context.Context) ([]model.Activity, error) {
	if v, ok := c.cache.Get(cacheKey); ok {
		return v.([]model.Activity), nil
	}
	acts, err := c.inner.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(cacheKey, acts)
	return acts, nil
}

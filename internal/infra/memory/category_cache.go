package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"trivia-visualizer/internal/domain"
)

// CategoryLoader fetches the category catalog from its source (the trivia API).
type CategoryLoader interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryCache keeps the catalog for a TTL so every dashboard load does not
// hit the API. A non-positive TTL disables caching.
type CategoryCache struct {
	loader CategoryLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	catalog   []domain.Category
	expiresAt time.Time
}

func NewCategoryCache(loader CategoryLoader, ttl time.Duration) *CategoryCache {
	return &CategoryCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CategoryCache) Categories(ctx context.Context) ([]domain.Category, error) {
	if catalog, ok := c.cached(c.clock()); ok {
		return catalog, nil
	}

	result, err, _ := c.sf.Do("categories", func() (interface{}, error) {
		now := c.clock()
		if catalog, ok := c.cached(now); ok {
			return catalog, nil
		}

		catalog, err := c.loader.FetchCategories(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.catalog = catalog
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

func (c *CategoryCache) cached(now time.Time) ([]domain.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.catalog != nil && c.expiresAt.After(now) {
		return c.catalog, true
	}
	return nil, false
}

// StaticCategoryLoader serves a fixed catalog (useful for tests/demos).
type StaticCategoryLoader struct {
	categories []domain.Category
	err        error
}

func NewStaticCategoryLoader(categories []domain.Category) *StaticCategoryLoader {
	return &StaticCategoryLoader{categories: categories}
}

// NewFailingCategoryLoader returns a loader that always fails with err.
func NewFailingCategoryLoader(err error) *StaticCategoryLoader {
	return &StaticCategoryLoader{err: err}
}

func (l *StaticCategoryLoader) FetchCategories(_ context.Context) ([]domain.Category, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.categories, nil
}

// Categories lets the static loader stand in for a cache.
func (l *StaticCategoryLoader) Categories(ctx context.Context) ([]domain.Category, error) {
	return l.FetchCategories(ctx)
}

func (c *CategoryCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"trivia-visualizer/internal/domain"
)

// CategoryLoader fetches the category catalog from its source (the trivia API).
type CategoryLoader interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryCache shares the catalog across instances through Redis and falls
// back to the loader on a miss. The catalog is stored as JSON under one key.
type CategoryCache struct {
	client *redis.Client
	loader CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

const categoriesKey = "trivia:categories"

func NewCategoryCache(client *redis.Client, loader CategoryLoader, ttl time.Duration) *CategoryCache {
	return &CategoryCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CategoryCache) Categories(ctx context.Context) ([]domain.Category, error) {
	if catalog, ok := c.cached(ctx); ok {
		return catalog, nil
	}

	result, err, _ := c.sf.Do(categoriesKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := c.cached(ctx); ok {
			return catalog, nil
		}

		catalog, err := c.loader.FetchCategories(ctx)
		if err != nil {
			return nil, err
		}

		ttl := c.ttlWithJitter()
		if ttl > 0 {
			raw, err := json.Marshal(catalog)
			if err == nil {
				err = c.client.Set(ctx, categoriesKey, raw, ttl).Err()
			}
			if err != nil {
				log.Printf("cache categories: %v", err)
			}
		}
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

// cached treats any Redis failure as a miss.
func (c *CategoryCache) cached(ctx context.Context) ([]domain.Category, bool) {
	raw, err := c.client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		return nil, false
	}
	var catalog []domain.Category
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, false
	}
	return catalog, true
}

func (c *CategoryCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

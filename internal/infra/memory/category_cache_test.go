package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-visualizer/internal/domain"
)

func TestCategoryCacheCaches(t *testing.T) {
	loader := &countingLoader{CategoryLoader: NewStaticCategoryLoader(sampleCatalog())}
	cache := NewCategoryCache(loader, time.Minute)

	if _, err := cache.Categories(context.Background()); err != nil {
		t.Fatalf("categories: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	catalog, err := cache.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(catalog) != 2 || catalog[0].Name != "General Knowledge" {
		t.Fatalf("unexpected catalog %+v", catalog)
	}
}

func TestCategoryCacheExpires(t *testing.T) {
	loader := &countingLoader{CategoryLoader: NewStaticCategoryLoader(sampleCatalog())}
	cache := NewCategoryCache(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.Categories(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = cache.Categories(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", loader.calls)
	}
}

func TestCategoryCacheDisabledWithoutTTL(t *testing.T) {
	loader := &countingLoader{CategoryLoader: NewStaticCategoryLoader(sampleCatalog())}
	cache := NewCategoryCache(loader, 0)

	_, _ = cache.Categories(context.Background())
	_, _ = cache.Categories(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected every call to hit the loader, got %d", loader.calls)
	}
}

func TestCategoryCacheDoesNotCacheErrors(t *testing.T) {
	boom := errors.New("boom")
	cache := NewCategoryCache(NewFailingCategoryLoader(boom), time.Minute)

	if _, err := cache.Categories(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

type countingLoader struct {
	CategoryLoader
	calls int
}

func (l *countingLoader) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	l.calls++
	return l.CategoryLoader.FetchCategories(ctx)
}

func sampleCatalog() []domain.Category {
	return []domain.Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 17, Name: "Science & Nature"},
	}
}

package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/recipe"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	v, ok := c.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[key] = value
	return nil
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{recipes: map[recipe.MealType][]recipe.Recipe{
		recipe.Lunch: {{ID: "l1", Name: "Soup"}},
	}}
	cache := newMemoryCache()
	cached := NewCachedSource(src, cache, time.Minute, zap.NewNop())

	t.Run("MissThenHit", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			recs, err := cached.Fetch(ctx, recipe.Lunch)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(recs) != 1 || recs[0].Name != "Soup" {
				t.Errorf("Unexpected recipes: %+v", recs)
			}
		}
		if src.callCount() != 1 {
			t.Errorf("Expected 1 upstream call, got %d", src.callCount())
		}
		if _, ok := cache.data["catalog:recipes:lunch"]; !ok {
			t.Error("Expected the response to be cached under the meal type key")
		}
	})

	t.Run("CorruptEntryFallsThrough", func(t *testing.T) {
		cache.data["catalog:recipes:lunch"] = []byte("{not json")
		recs, err := cached.Fetch(ctx, recipe.Lunch)
		if err != nil || len(recs) != 1 {
			t.Errorf("Expected upstream result, got %+v, %v", recs, err)
		}
	})

	t.Run("BrokenCacheFallsThrough", func(t *testing.T) {
		broken := NewCachedSource(src, &memoryCache{err: errors.New("redis down")}, time.Minute, zap.NewNop())
		recs, err := broken.Fetch(ctx, recipe.Lunch)
		if err != nil || len(recs) != 1 {
			t.Errorf("Expected upstream result, got %+v, %v", recs, err)
		}
	})

	t.Run("UpstreamErrorPropagates", func(t *testing.T) {
		failing := NewCachedSource(&fakeSource{err: errors.New("boom")}, newMemoryCache(), time.Minute, zap.NewNop())
		if _, err := failing.Fetch(ctx, recipe.Dinner); err == nil {
			t.Error("Expected upstream error")
		}
	})
}

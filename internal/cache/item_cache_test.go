package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/cache"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupItemCache returns an ItemCache backed by an in-memory Redis server.
func setupItemCache(t *testing.T) (*cache.ItemCache, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewItemCache(cache.NewRedisCache(client, time.Minute), 24*time.Hour), mr, client
}

func sampleItems() []models.SharedCartItem {
	return []models.SharedCartItem{
		{ID: 1, ProductID: 1, ProductName: "Espresso beans", Quantity: 2, UnitPrice: 50000, Subtotal: 100000, AddedBy: "owner"},
		{ID: 2, ProductID: 9, ProductName: "Filter papers", Quantity: 1, UnitPrice: 15000, Subtotal: 15000, AddedBy: "friend"},
	}
}

type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, string, any) (bool, error)        { return false, f.err }
func (f failingStore) Set(context.Context, string, any, time.Duration) error { return f.err }
func (f failingStore) Delete(context.Context, string) error                  { return f.err }
func (f failingStore) Close() error                                          { return nil }

func TestItemCachePutGet(t *testing.T) {
	ctx := t.Context()

	t.Run("Round trip", func(t *testing.T) {
		itemCache, mr, _ := setupItemCache(t)

		itemCache.Put(ctx, 42, sampleItems())

		items, ok := itemCache.Get(ctx, 42)
		require.True(t, ok)
		assert.Equal(t, sampleItems(), items)
		assert.True(t, mr.Exists("shared_cart_items:42"), "snapshot should be written to the durable tier")
		assert.Equal(t, 24*time.Hour, mr.TTL("shared_cart_items:42"))
	})

	t.Run("Empty put never erases a snapshot", func(t *testing.T) {
		itemCache, _, _ := setupItemCache(t)

		itemCache.Put(ctx, 42, sampleItems())
		itemCache.Put(ctx, 42, nil)
		itemCache.Put(ctx, 42, []models.SharedCartItem{})

		items, ok := itemCache.Get(ctx, 42)
		require.True(t, ok)
		assert.Len(t, items, 2)
	})

	t.Run("Empty put on unknown cart stores nothing", func(t *testing.T) {
		itemCache, mr, _ := setupItemCache(t)

		itemCache.Put(ctx, 7, nil)

		assert.False(t, itemCache.Has(ctx, 7))
		assert.False(t, mr.Exists("shared_cart_items:7"))
	})

	t.Run("Later put overwrites", func(t *testing.T) {
		itemCache, _, _ := setupItemCache(t)

		itemCache.Put(ctx, 42, sampleItems())
		itemCache.Put(ctx, 42, sampleItems()[:1])

		items, ok := itemCache.Get(ctx, 42)
		require.True(t, ok)
		assert.Len(t, items, 1)
	})

	t.Run("Returned slice is a copy", func(t *testing.T) {
		itemCache, _, _ := setupItemCache(t)
		itemCache.Put(ctx, 42, sampleItems())

		items, _ := itemCache.Get(ctx, 42)
		items[0].Quantity = 99

		again, _ := itemCache.Get(ctx, 42)
		assert.Equal(t, 2, again[0].Quantity)
	})
}

func TestItemCacheSurvivesRestart(t *testing.T) {
	ctx := t.Context()
	first, _, client := setupItemCache(t)

	first.Put(ctx, 42, sampleItems())

	// a fresh process starts with an empty mirror and hydrates from the durable tier
	second := cache.NewItemCache(cache.NewRedisCache(client, time.Minute), 24*time.Hour)

	assert.True(t, second.Has(ctx, 42))
	items, ok := second.Get(ctx, 42)
	require.True(t, ok)
	assert.Equal(t, sampleItems(), items)
}

func TestItemCacheStoreUnavailable(t *testing.T) {
	ctx := t.Context()
	itemCache := cache.NewItemCache(failingStore{err: errors.New("connection refused")}, time.Hour)

	t.Run("Get degrades to miss", func(t *testing.T) {
		items, ok := itemCache.Get(ctx, 1)

		assert.False(t, ok)
		assert.Nil(t, items)
	})

	t.Run("Put keeps the in-memory mirror", func(t *testing.T) {
		assert.NotPanics(t, func() { itemCache.Put(ctx, 1, sampleItems()) })

		items, ok := itemCache.Get(ctx, 1)
		require.True(t, ok)
		assert.Len(t, items, 2)
	})
}

func TestItemCacheCorruptEntry(t *testing.T) {
	ctx := t.Context()
	itemCache, mr, _ := setupItemCache(t)

	require.NoError(t, mr.Set("shared_cart_items:5", "{not json"))

	items, ok := itemCache.Get(ctx, 5)
	assert.False(t, ok)
	assert.Nil(t, items)
}

func TestItemCacheRetention(t *testing.T) {
	ctx := t.Context()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	itemCache := cache.NewItemCache(cache.NewRedisCache(client, time.Minute), time.Hour,
		cache.WithClock(func() time.Time { return now }))

	itemCache.Put(ctx, 42, sampleItems())

	t.Run("Served from memory within retention", func(t *testing.T) {
		now = now.Add(30 * time.Minute)
		mr.FastForward(30 * time.Minute)

		_, ok := itemCache.Get(ctx, 42)
		assert.True(t, ok)
	})

	t.Run("Memory expires with the durable tier", func(t *testing.T) {
		now = now.Add(31 * time.Minute)
		mr.FastForward(31 * time.Minute)
		require.False(t, mr.Exists("shared_cart_items:42"))

		items, ok := itemCache.Get(ctx, 42)

		assert.False(t, ok)
		assert.Nil(t, items)
		assert.False(t, itemCache.Has(ctx, 42))
	})

	t.Run("A new put starts a fresh retention window", func(t *testing.T) {
		itemCache.Put(ctx, 42, sampleItems())

		_, ok := itemCache.Get(ctx, 42)
		assert.True(t, ok)
	})
}

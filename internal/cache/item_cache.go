package cache

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/metrics"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/models"
)

// ItemCache keeps the last known line items of every shared cart so they survive the
// backend purging them on checkout.
//
// It has two tiers. The durable store is the source of truth and outlives the process;
// the in-memory mirror is empty on cold start and filled lazily from the store on miss.
// Storage failures are logged and read as "no snapshot", never returned to callers.
type ItemCache struct {
	store Cache
	ttl   time.Duration
	now   func() time.Time

	mu  sync.RWMutex
	mem map[int64]models.ItemSnapshot
}

type ItemCacheOption func(*ItemCache)

func WithClock(now func() time.Time) ItemCacheOption {
	return func(c *ItemCache) {
		c.now = now
	}
}

func NewItemCache(store Cache, ttl time.Duration, opts ...ItemCacheOption) *ItemCache {
	c := &ItemCache{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		mem:   make(map[int64]models.ItemSnapshot),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// expired mirrors the durable tier's retention so memory never outlives the store.
func (c *ItemCache) expired(snapshot models.ItemSnapshot) bool {
	return c.ttl > 0 && !c.now().Before(snapshot.CapturedAt.Add(c.ttl))
}

func snapshotKey(cartID int64) string {
	return Key(SnapshotKeyPrefix, strconv.FormatInt(cartID, 10))
}

// Put overwrites the snapshot for cartID. An empty list is ignored so a transient empty
// fetch can never erase a good snapshot. The durable write has finished when Put returns.
func (c *ItemCache) Put(ctx context.Context, cartID int64, items []models.SharedCartItem) {
	if len(items) == 0 {
		return
	}

	logger := middleware.LoggerFromContext(ctx)

	snapshot := models.ItemSnapshot{
		CartID:     cartID,
		Items:      cloneItems(items),
		CapturedAt: c.now(),
	}

	if err := c.store.Set(ctx, snapshotKey(cartID), snapshot, c.ttl); err != nil {
		logger.Warn("Failed to persist item snapshot",
			slog.Int64("cartId", cartID),
			slog.Any("error", err))
		metrics.SnapshotOperation("put", "error")
	} else {
		metrics.SnapshotOperation("put", "ok")
	}

	c.mu.Lock()
	c.mem[cartID] = snapshot
	c.mu.Unlock()
}

// Get returns a copy of the last stored snapshot for cartID.
func (c *ItemCache) Get(ctx context.Context, cartID int64) ([]models.SharedCartItem, bool) {
	c.mu.RLock()
	snapshot, ok := c.mem[cartID]
	c.mu.RUnlock()

	if ok && !c.expired(snapshot) {
		metrics.SnapshotOperation("get", "memory_hit")
		return cloneItems(snapshot.Items), true
	}

	if ok {
		c.mu.Lock()
		if current, exists := c.mem[cartID]; exists && c.expired(current) {
			delete(c.mem, cartID)
		}
		c.mu.Unlock()
	}

	var stored models.ItemSnapshot

	found, err := c.store.Get(ctx, snapshotKey(cartID), &stored)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("Item snapshot store unavailable, treating as miss",
			slog.Int64("cartId", cartID),
			slog.Any("error", err))
		metrics.SnapshotOperation("get", "error")

		return nil, false
	}

	if !found || len(stored.Items) == 0 || c.expired(stored) {
		metrics.SnapshotOperation("get", "miss")
		return nil, false
	}

	c.mu.Lock()
	// a concurrent Put may have landed while the store was read; it is newer
	if _, exists := c.mem[cartID]; !exists {
		c.mem[cartID] = stored
	}
	c.mu.Unlock()

	metrics.SnapshotOperation("get", "store_hit")

	return cloneItems(stored.Items), true
}

func (c *ItemCache) Has(ctx context.Context, cartID int64) bool {
	_, ok := c.Get(ctx, cartID)

	return ok
}

func cloneItems(items []models.SharedCartItem) []models.SharedCartItem {
	out := make([]models.SharedCartItem, len(items))
	copy(out, items)

	return out
}

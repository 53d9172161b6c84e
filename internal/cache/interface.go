package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

const (
	SnapshotKeyPrefix = "shared_cart_items"
	ListKeyPrefix     = "shared_cart_list"
	// users whose cached listing includes a given cart
	ListViewersKeyPrefix = "shared_cart_list_viewers"
)

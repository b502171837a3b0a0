// Package cache holds aggregate snapshots under invalidation tags. A write
// endpoint invalidates every tag whose collection it touched; the next read
// under that tag misses and re-fetches.
package cache

import (
	"context"
	"time"
)

// Tags shared by the read and write endpoints.
const (
	TagOrders       = "Orders"
	TagOrderDetails = "OrderDetails"
	TagCookerOrders = "CookerOrders"
	TagMenuItems    = "MenuItems"
	TagUsers        = "Users"
	TagReviews      = "reviews"
	TagReports      = "Reports"
)

// Cache stores JSON snapshots. Invalidate drops a tag as a whole, so a reader
// sees either the old set or none of it, and bumps the tag's generation.
//
// A reader takes Generation before loading and hands it to Put. Put stores
// nothing if the tag was invalidated since, so a load that raced a write
// never outlives it.
type Cache interface {
	Get(ctx context.Context, tag, key string) ([]byte, bool, error)
	Generation(ctx context.Context, tag string) (int64, error)
	Put(ctx context.Context, tag, key string, gen int64, data []byte) error
	Invalidate(ctx context.Context, tags ...string) error
	Close() error
}

type entry struct {
	data    []byte
	expires time.Time
}

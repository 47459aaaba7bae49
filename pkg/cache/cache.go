// Package cache provides byte-level caching for generated set files and
// rendered diagrams.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI
//     ($XDG_CACHE_HOME/geoset)
//   - [RedisCache]: shared cache for `geoset serve` deployments
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] derives keys from the snapshot hash plus the options that
// influence the output, so equal snapshots share entries:
//
//	hash := cache.Hash(snapshotJSON)
//	key := keyer.BundleKey(hash, cache.BundleKeyOpts{Prefix: "INDUSTRY_"})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	TTLBundle = 7 * 24 * time.Hour
	TTLRender = 7 * 24 * time.Hour
)

// Cache stores opaque byte values by key.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

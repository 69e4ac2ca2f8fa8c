// Package cache provides byte-level caches for generated graphs.
//
// A [Cache] stores opaque values under string keys produced by a [Keyer].
// Backends:
//   - [FileCache]: hashed files under a directory, for CLI usage
//   - [RedisCache]: a shared Redis instance
//   - [MongoCache]: a MongoDB collection
//   - [NullCache]: stores nothing
//
// A miss is reported as (nil, false, nil). Backends never turn an unreadable
// entry into a miss: callers decide what a corrupt entry means.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for serialized artifacts.
type Cache interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// TTLGraph is the lifetime of cached graphs. Graphs are a pure function of
// their parameters, so they never expire.
const TTLGraph time.Duration = 0

// Key types reported to cache hooks.
const (
	KeyTypeGraph = "graph"
)

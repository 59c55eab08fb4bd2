// Package cache stores computed layouts and rendered artifacts.
//
// Arranging a grid document is cheap, but rendering PNGs through Graphviz and
// serving many identical requests from the HTTP API is not. The pipeline keys
// every result by a content hash of its input, so any backend that can store
// bytes under a string key with an expiry can serve as the cache.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: documents with a TTL index, for deployments that already run MongoDB
//
// [Open] selects a backend from [Options] and wraps it with [WithHooks] so
// hits, misses and writes reach the registered observability hooks.
//
// # Keys
//
// A [Keyer] turns content hashes and options into cache keys. The
// [DefaultKeyer] produces keys of the form "kind:sha256"; a [ScopedKeyer]
// prefixes them per grid so one grid's entries can be told apart from
// another's.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the data stored under key. A missing or expired entry is
	// reported as a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default time-to-live values per entry kind.
const (
	// TTLLayout is how long arranged layouts are kept.
	TTLLayout = 24 * time.Hour

	// TTLArtifact is how long rendered artifacts are kept.
	TTLArtifact = 7 * 24 * time.Hour
)

// Package cache provides byte-oriented caching backends for lookup results.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON envelopes under the user's cache directory (CLI, TUI)
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// Keys are free-form strings. Use [Scoped] to give each data source its own
// key space. The package also holds the retry helpers used by HTTP clients.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads with a time-to-live.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of 0 means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

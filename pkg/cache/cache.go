// Package cache provides a small byte-oriented cache used to remember
// per-file extraction results between runs. Entries are keyed by file
// path plus modification time and size, so an unchanged file hits the
// cache and a touched file misses it naturally, with TTL as a backstop.
package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL bounds how long an extraction result is trusted even when
// the file metadata still matches.
const DefaultTTL = 7 * 24 * time.Hour

// ErrCacheMiss is returned when an item is not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores opaque byte values with per-entry expiration.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero stores without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

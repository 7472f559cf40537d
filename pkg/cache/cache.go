// Package cache provides byte caching for fetched remote source images.
//
// Building a collage from URLs downloads up to four images per run; the
// cache keeps the fetched bytes so repeated runs against the same sources
// (tweaking padding, reseeding the arrangement coin) don't refetch. Keys
// are derived from the source reference, values are the raw encoded image
// bytes before decoding.
//
// Three backends implement the Cache interface:
//   - FileCache: the CLI default, entries under ~/.cache/fourup/
//   - RedisCache: shared cache for server deployments
//   - NullCache: caching disabled
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache stores fetched source bytes keyed by source reference.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A ttl of 0 means the entry
	// never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SourceKey derives the cache key for a source reference. Hashing keeps
// keys filesystem- and redis-safe whatever characters the URL contains.
func SourceKey(ref string) string {
	return "src:" + Hash([]byte(ref))
}

// DefaultDir returns the default file cache directory,
// ~/.cache/fourup on most systems.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "fourup"), nil
}

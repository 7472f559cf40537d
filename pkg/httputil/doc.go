// Package httputil downloads remote source images for collage builds.
//
// # Overview
//
// Two pieces make up the package:
//
//   - [Fetcher]: HTTP download of source images with byte caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Fetching
//
// [Fetcher] downloads the raw encoded bytes of an image URL and stores
// them in a [cache.Cache] keyed by the source reference. Repeated builds
// against the same URLs (re-rolling the arrangement, tweaking padding)
// hit the cache instead of the network.
//
// Usage:
//
//	f := httputil.NewFetcher(fileCache)
//	data, err := f.Fetch(ctx, "https://example.com/photo.jpg")
//
// # Retry
//
// [Retry] wraps operations with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// The delay doubles after each failed attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return doRequest()
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache TTL: 24 hours
//   - Max retries: 3
//   - Base backoff: 1 second
//   - Per-request timeout: 30 seconds
//   - Max image size: 32 MiB
//
// Cached downloads can be cleared via `fourup cache clear` or by deleting
// the cache directory.
package httputil

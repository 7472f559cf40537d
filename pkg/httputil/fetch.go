package httputil

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/fourup/pkg/cache"
	"github.com/matzehuels/fourup/pkg/errors"
	"github.com/matzehuels/fourup/pkg/observability"
)

const (
	// MaxFetchBytes caps the size of a downloaded source image.
	MaxFetchBytes = 32 << 20

	// DefaultTTL is how long fetched source bytes stay cached.
	DefaultTTL = 24 * time.Hour

	requestTimeout = 30 * time.Second
)

// Fetcher downloads source images over HTTP with retry and caching.
// The zero value is not usable; construct with [NewFetcher].
type Fetcher struct {
	client *http.Client
	cache  cache.Cache
	ttl    time.Duration
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithTTL overrides how long fetched bytes stay cached.
func WithTTL(ttl time.Duration) FetcherOption {
	return func(f *Fetcher) { f.ttl = ttl }
}

// NewFetcher creates a Fetcher backed by c. A nil cache disables caching.
func NewFetcher(c cache.Cache, opts ...FetcherOption) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	f := &Fetcher{
		client: &http.Client{Timeout: requestTimeout},
		cache:  c,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchWithCacheInfo returns the raw encoded bytes of the image at ref and
// whether they came from the cache. The cache is consulted before the
// network; cache write failures are ignored, the download still succeeds.
func (f *Fetcher) FetchWithCacheInfo(ctx context.Context, ref string) ([]byte, bool, error) {
	if err := errors.ValidateSourceRef(ref); err != nil {
		return nil, false, err
	}

	key := cache.SourceKey(ref)
	if data, ok, err := f.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "source")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "source")

	data, err := f.download(ctx, ref)
	if err != nil {
		return nil, false, err
	}

	if err := f.cache.Set(ctx, key, data, f.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "source", len(data))
	}
	return data, false, nil
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards
// the cache hit info.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	data, _, err := f.FetchWithCacheInfo(ctx, ref)
	return data, err
}

func (f *Fetcher) download(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid source URL %q", ref)
	}

	var body []byte
	err = RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "building request for %q", ref)
		}

		start := time.Now()
		observability.HTTP().OnRequest(ctx, http.MethodGet, u.Host, u.Path)

		resp, err := f.client.Do(req)
		if err != nil {
			observability.HTTP().OnError(ctx, http.MethodGet, u.Host, u.Path, err)
			return &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetching %q", ref)}
		}
		defer resp.Body.Close()
		observability.HTTP().OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusOK:
			// fall through to the body read
		case resp.StatusCode == http.StatusNotFound:
			return errors.New(errors.ErrCodeNotFound, "source %q returned 404", ref)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "source %q returned status %d", ref, resp.StatusCode)}
		default:
			return errors.New(errors.ErrCodeNetwork, "source %q returned status %d", ref, resp.StatusCode)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchBytes+1))
		if err != nil {
			return &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "reading body of %q", ref)}
		}
		if len(data) > MaxFetchBytes {
			return errors.New(errors.ErrCodeInvalidImage, "source %q exceeds the %d byte limit", ref, MaxFetchBytes)
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

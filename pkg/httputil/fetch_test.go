package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/fourup/pkg/cache"
	"github.com/matzehuels/fourup/pkg/errors"
)

// fetchWithFastRetry fetches with a bounded deadline so retry tests cannot hang.
func fetchWithFastRetry(t *testing.T, f *Fetcher, ref string) ([]byte, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return f.Fetch(ctx, ref)
}

func TestFetchSuccess(t *testing.T) {
	body := []byte("fake image bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	got, err := fetchWithFastRetry(t, f, srv.URL+"/photo.jpg")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("Fetch = %q, want %q", got, body)
	}
}

func TestFetchUsesCache(t *testing.T) {
	var hits atomic.Int32
	body := []byte("cached image bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(body)
	}))
	defer srv.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	f := NewFetcher(c)
	ref := srv.URL + "/photo.jpg"

	if _, err := fetchWithFastRetry(t, f, ref); err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	got, err := fetchWithFastRetry(t, f, ref)
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("cached Fetch = %q, want %q", got, body)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	got, err := fetchWithFastRetry(t, f, srv.URL+"/photo.jpg")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != "recovered" {
		t.Errorf("Fetch = %q, want %q", got, "recovered")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server hit %d times, want 2", n)
	}
}

func TestFetchNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	_, err := fetchWithFastRetry(t, f, srv.URL+"/missing.jpg")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeNotFound)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestFetchRejectsInvalidRef(t *testing.T) {
	f := NewFetcher(nil)
	if _, err := f.Fetch(context.Background(), "ftp://example.com/x.jpg"); err == nil {
		t.Error("Fetch accepted a non-http reference")
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	var calls int
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return errors.New(errors.ErrCodeInvalidInput, "permanent")
	})
	if err == nil {
		t.Fatal("Retry returned nil for a failing fn")
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestRetryEventuallySucceeds(t *testing.T) {
	var calls int
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "transient")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrina-shop/media-proxy/pkg/allowlist"
)

func localGuard() *allowlist.Guard {
	return allowlist.NewGuard([]string{"127.0.0.1"})
}

func newFetcherForTest(timeout time.Duration) *Fetcher {
	return NewFetcher(localGuard(), "test-agent/1.0", "https://shop.example/", timeout)
}

func TestFetch_Success(t *testing.T) {
	var gotUA, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	body, contentType, err := newFetcherForTest(0).Fetch(context.Background(), srv.URL+"/img.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), body)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, "test-agent/1.0", gotUA)
	assert.Equal(t, "https://shop.example/", gotReferer)
}

func TestFetch_FollowsOneRedirect(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer target.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/real.png", http.StatusFound)
	}))
	defer origin.Close()

	body, contentType, err := newFetcherForTest(0).Fetch(context.Background(), origin.URL+"/img.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), body)
	assert.Equal(t, "image/png", contentType)
}

func TestFetch_DoesNotFollowSecondRedirect(t *testing.T) {
	var hops atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hops.Add(1)
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer srv.Close()

	_, _, err := newFetcherForTest(0).Fetch(context.Background(), srv.URL+"/img.jpg")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "http_302", fetchErr.Reason)
	assert.Equal(t, int32(2), hops.Load(), "exactly one redirect hop may be followed")
}

func TestFetch_RedirectToBlockedHostRefused(t *testing.T) {
	var hops atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hops.Add(1)
		http.Redirect(w, r, "https://attacker.invalid/steal.jpg", http.StatusMovedPermanently)
	}))
	defer srv.Close()

	_, _, err := newFetcherForTest(0).Fetch(context.Background(), srv.URL+"/img.jpg")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "redirect_blocked", fetchErr.Reason)
	assert.Equal(t, int32(1), hops.Load(), "blocked redirect target must never be fetched")
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, _, err := newFetcherForTest(0).Fetch(context.Background(), srv.URL+"/missing.jpg")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "http_404", fetchErr.Reason)
}

func TestFetch_Timeout(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	_, _, err := newFetcherForTest(100 * time.Millisecond).Fetch(context.Background(), srv.URL+"/slow.jpg")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "timeout", fetchErr.Reason)
}

func TestFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, _, err := newFetcherForTest(0).Fetch(context.Background(), url+"/img.jpg")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "network", fetchErr.Reason)
}

func TestFetch_RedirectWithoutLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	_, _, err := newFetcherForTest(0).Fetch(context.Background(), srv.URL+"/img.jpg")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "http_302", fetchErr.Reason)
}

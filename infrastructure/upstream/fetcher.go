package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vitrina-shop/media-proxy/pkg/allowlist"
)

const defaultTimeout = 10 * time.Second

// FetchError classifies an upstream failure. Reason is one of
// "timeout", "network", "redirect_blocked", "redirect_exhausted" or
// "http_<status>".
type FetchError struct {
	Reason string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s failed (%s)", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves image bytes from allow-listed upstream CDNs. Many
// image CDNs reject requests that look like hotlinking, so every request
// carries a browser User-Agent and a Referer pointing at the storefront
// domain they recognize.
type Fetcher struct {
	client    *http.Client
	guard     *allowlist.Guard
	userAgent string
	referer   string
}

func NewFetcher(guard *allowlist.Guard, userAgent, referer string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			// Redirects are followed manually so the hop target can be
			// re-validated against the allow-list first.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		guard:     guard,
		userAgent: userAgent,
		referer:   referer,
	}
}

// Fetch issues a GET against rawURL and returns the body bytes and the
// upstream Content-Type. At most one redirect hop is followed, and the
// hop target host must also pass the allow-list.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, "", classify(rawURL, err)
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := resp.Header.Get("Location")
		drain(resp)
		if location == "" {
			return nil, "", &FetchError{Reason: fmt.Sprintf("http_%d", resp.StatusCode), URL: rawURL}
		}

		redirectURL, err := resolveRedirect(rawURL, location)
		if err != nil {
			return nil, "", &FetchError{Reason: "redirect_exhausted", URL: rawURL, Err: err}
		}
		if !f.guard.IsAllowed(redirectURL.Hostname()) {
			logrus.Warnf("[FETCH] Redirect to non-allow-listed host %q refused", redirectURL.Hostname())
			return nil, "", &FetchError{Reason: "redirect_blocked", URL: rawURL}
		}

		resp, err = f.get(ctx, redirectURL.String())
		if err != nil {
			return nil, "", classify(rawURL, err)
		}
	}
	defer drain(resp)

	// The second response is terminal; further redirects are not
	// followed.
	if resp.StatusCode != http.StatusOK {
		return nil, "", &FetchError{Reason: fmt.Sprintf("http_%d", resp.StatusCode), URL: rawURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", classify(rawURL, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Referer", f.referer)
	req.Header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")
	return f.client.Do(req)
}

func resolveRedirect(base, location string) (*url.URL, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	locURL, err := url.Parse(location)
	if err != nil {
		return nil, err
	}
	return baseURL.ResolveReference(locURL), nil
}

func classify(rawURL string, err error) *FetchError {
	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &urlErr) && urlErr.Timeout()) {
		return &FetchError{Reason: "timeout", URL: rawURL, Err: err}
	}
	return &FetchError{Reason: "network", URL: rawURL, Err: err}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

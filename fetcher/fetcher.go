// Package fetcher retrieves the HTML of a business homepage.
package fetcher

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/use-agent/brandkit/models"
)

// ChromeUA is the user agent sent with every outbound request.
const ChromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 5 << 20
)

// Page is a successfully fetched homepage.
type Page struct {
	// URL is the final URL after redirects.
	URL string

	// Origin is scheme://host of the final URL, used to resolve relative paths.
	Origin string

	HTML        string
	StatusCode  int
	ContentType string

	// FellBack is true when HTTPS failed and the page came over plain HTTP.
	FellBack bool
}

// Options configures a Fetcher. Zero values select defaults.
type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string

	// Client overrides the Chrome-fingerprinted default client.
	Client *http.Client
}

// Fetcher downloads pages with an HTTPS-then-HTTP fallback.
// It is safe for concurrent use.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64
	userAgent    string
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = ChromeUA
	}
	if opts.Client == nil {
		opts.Client = NewClient(opts.Timeout)
	}
	return &Fetcher{
		client:       opts.Client,
		timeout:      opts.Timeout,
		maxBodyBytes: opts.MaxBodyBytes,
		userAgent:    opts.UserAgent,
	}
}

// NormalizeURL turns user input ("acme.com", "https://acme.com/x") into an
// absolute http(s) URL. Input without a scheme is assumed to be HTTPS.
func NormalizeURL(raw string) (*url.URL, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, models.NewBrandError(models.ErrCodeInvalidURL, "url is empty", nil)
	}
	if !strings.Contains(s, "://") {
		s = "https://" + strings.TrimPrefix(s, "//")
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, models.NewBrandError(models.ErrCodeInvalidURL, "cannot parse url", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, models.NewBrandError(models.ErrCodeInvalidURL, "unsupported scheme "+u.Scheme, nil)
	}
	if u.Hostname() == "" {
		return nil, models.NewBrandError(models.ErrCodeInvalidURL, "url has no host", nil)
	}
	u.Fragment = ""
	return u, nil
}

// Fetch resolves raw to a URL and downloads it.
//
// An HTTPS attempt that fails below the HTTP layer (DNS, TCP, TLS, timeout)
// is retried exactly once over plain HTTP on the same host. A non-2xx
// response is final and reported as FETCH_FAILED with its status code; a
// body that cannot be read or decoded is final as well.
func (f *Fetcher) Fetch(ctx context.Context, raw string) (*Page, error) {
	target, err := NormalizeURL(raw)
	if err != nil {
		return nil, err
	}

	page, err := f.attempt(ctx, target)
	if err == nil {
		return page, nil
	}
	if isFinal(err) {
		return nil, err
	}
	if target.Scheme != "https" || ctx.Err() != nil {
		return nil, models.NewBrandError(models.ErrCodeFetchFailed, "failed to fetch "+target.String(), err)
	}

	fallback := *target
	fallback.Scheme = "http"
	slog.Warn("https fetch failed, retrying over http",
		"url", target.String(),
		"error", err,
	)

	page, httpErr := f.attempt(ctx, &fallback)
	if httpErr != nil {
		if isFinal(httpErr) {
			return nil, httpErr
		}
		return nil, models.NewBrandError(models.ErrCodeFetchFailed, "failed to fetch "+target.Host+" over https and http",
			errors.Join(err, httpErr))
	}
	page.FellBack = true
	return page, nil
}

// attempt performs a single GET under the per-attempt timeout.
func (f *Fetcher) attempt(ctx context.Context, target *url.URL) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: build request: %w", err)
	}
	SetBrowserHeaders(req, f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, models.NewFetchStatusError(resp.StatusCode, target.String())
	}

	// The server answered; a broken body is final and must not trigger the
	// plain-HTTP retry.
	body, err := readBody(resp, f.maxBodyBytes)
	if err != nil {
		return nil, models.NewBrandError(models.ErrCodeFetchFailed, "failed to read "+target.String(), err)
	}

	final := target
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}

	slog.Debug("page fetched",
		"url", final.String(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"latency", time.Since(start),
	)

	return &Page{
		URL:         final.String(),
		Origin:      final.Scheme + "://" + final.Host,
		HTML:        string(body),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// SetBrowserHeaders applies the headers a desktop Chrome sends on navigation.
func SetBrowserHeaders(req *http.Request, userAgent string) {
	if userAgent == "" {
		userAgent = ChromeUA
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
}

// isFinal reports whether err came from a server that answered: a non-2xx
// status or an unreadable body.
func isFinal(err error) bool {
	var be *models.BrandError
	return errors.As(err, &be)
}

// readBody decodes the response per Content-Encoding, capped at maxBytes.
func readBody(resp *http.Response, maxBytes int64) ([]byte, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("fetcher: gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("fetcher: deflate decode: %w", err)
		}
		defer zr.Close()
		reader = zr
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("fetcher: read body: %w", err)
	}
	return body, nil
}

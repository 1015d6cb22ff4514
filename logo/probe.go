package logo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/use-agent/brandkit/fetcher"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultConcurrency  = 6
	defaultProbeTimeout = 5 * time.Second
)

// Candidate is one logo URL and what its probe revealed.
type Candidate struct {
	URL   string `json:"url"`
	Index int    `json:"-"`
	Score int    `json:"score"`

	OK            bool   `json:"ok"`
	StatusCode    int    `json:"status_code,omitempty"`
	ContentType   string `json:"content_type,omitempty"`
	ContentLength int64  `json:"content_length"` // -1 when unknown
}

// IsHTML reports whether the server answered with an HTML document, which
// usually means a catch-all route rather than a real image.
func (c Candidate) IsHTML() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(c.ContentType)), "text/html")
}

// ProberOptions configures a Prober. Zero values select defaults.
type ProberOptions struct {
	Concurrency int
	Timeout     time.Duration

	// RequestsPerSecond paces probe starts; <= 0 disables pacing.
	RequestsPerSecond float64
	Burst             int

	UserAgent string
	Client    *http.Client
}

// Prober checks candidate URLs without downloading their bodies.
// It is safe for concurrent use.
type Prober struct {
	client      *http.Client
	concurrency int
	timeout     time.Duration
	limiter     *rate.Limiter
	userAgent   string
}

// NewProber creates a Prober.
func NewProber(opts ProberOptions) *Prober {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultProbeTimeout
	}
	if opts.Client == nil {
		opts.Client = fetcher.NewClient(opts.Timeout)
	}
	limit, burst := rate.Inf, opts.Burst
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if burst <= 0 {
		burst = opts.Concurrency
	}
	return &Prober{
		client:      opts.Client,
		concurrency: opts.Concurrency,
		timeout:     opts.Timeout,
		limiter:     rate.NewLimiter(limit, burst),
		userAgent:   opts.UserAgent,
	}
}

// Probe checks every URL with a bounded number of concurrent requests and
// returns one Candidate per URL, in input order. A failed probe only marks
// its own Candidate as not OK.
func (p *Prober) Probe(ctx context.Context, urls []string) []Candidate {
	out := make([]Candidate, len(urls))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			out[i] = p.probeOne(ctx, i, u)
			return nil
		})
	}
	_ = g.Wait()

	ok := 0
	for _, c := range out {
		if c.OK {
			ok++
		}
	}
	slog.Debug("logo candidates probed", "total", len(urls), "ok", ok)
	return out
}

func (p *Prober) probeOne(ctx context.Context, index int, target string) Candidate {
	c := Candidate{URL: target, Index: index, ContentLength: -1}

	if err := p.limiter.Wait(ctx); err != nil {
		return c
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.request(ctx, http.MethodHead, target)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		resp.Body.Close()
		resp, err = p.request(ctx, http.MethodGet, target)
	}
	if err != nil {
		slog.Debug("logo probe failed", "url", target, "error", err)
		return c
	}
	// The body is never read; closing drops the connection for GET fallbacks.
	resp.Body.Close()

	c.StatusCode = resp.StatusCode
	c.ContentType = resp.Header.Get("Content-Type")
	c.ContentLength = resp.ContentLength
	c.OK = resp.StatusCode >= 200 && resp.StatusCode <= 299
	if !c.OK {
		slog.Debug("logo probe rejected", "url", target, "status", resp.StatusCode)
	}
	return c
}

func (p *Prober) request(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("logo: build %s request: %w", method, err)
	}
	fetcher.SetBrowserHeaders(req, p.userAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8")
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("logo: %s %s: %w", method, target, err)
	}
	return resp, nil
}

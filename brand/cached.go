package brand

import (
	"context"
	"log/slog"

	"github.com/use-agent/brandkit/cache"
	"github.com/use-agent/brandkit/fetcher"
	"github.com/use-agent/brandkit/models"
)

// Runner produces a brand profile for one website.
type Runner interface {
	Run(ctx context.Context, raw string) (*models.BrandProfile, models.TimingInfo, error)
}

// CachedRunner serves repeated requests for the same site from a profile
// cache. Only successful runs are stored.
type CachedRunner struct {
	next  Runner
	cache *cache.Cache
}

// WithCache wraps next with c. A nil cache returns next unchanged.
func WithCache(next Runner, c *cache.Cache) Runner {
	if c == nil {
		return next
	}
	return &CachedRunner{next: next, cache: c}
}

// Run implements Runner.
func (r *CachedRunner) Run(ctx context.Context, raw string) (*models.BrandProfile, models.TimingInfo, error) {
	target, err := fetcher.NormalizeURL(raw)
	if err != nil {
		// Let the wrapped runner produce the INVALID_URL error.
		return r.next.Run(ctx, raw)
	}

	key := cache.Key(target.String())
	if profile, ok := r.cache.Get(key); ok {
		slog.Debug("brand profile cache hit", "url", target.String())
		return profile, models.TimingInfo{}, nil
	}

	profile, timing, err := r.next.Run(ctx, raw)
	if err == nil {
		r.cache.Set(key, profile)
	}
	return profile, timing, err
}

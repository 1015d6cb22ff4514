// Package brand wires fetching, extraction, logo ranking and enhancement
// into a single brand profile for one website.
package brand

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/brandkit/config"
	"github.com/use-agent/brandkit/enhance"
	"github.com/use-agent/brandkit/extractor"
	"github.com/use-agent/brandkit/fetcher"
	"github.com/use-agent/brandkit/logo"
	"github.com/use-agent/brandkit/models"
	"golang.org/x/sync/errgroup"
)

// PageFetcher downloads the homepage.
type PageFetcher interface {
	Fetch(ctx context.Context, raw string) (*fetcher.Page, error)
}

// LogoProber checks which candidate URLs exist.
type LogoProber interface {
	Probe(ctx context.Context, urls []string) []logo.Candidate
}

// Enhancer refines heuristic findings. Implementations must not fail;
// an empty Result means no refinement.
type Enhancer interface {
	Enhance(ctx context.Context, in enhance.Input) enhance.Result
}

// Options assembles a Pipeline. Nil fields select defaults, except Enhancer,
// which is skipped when nil.
type Options struct {
	Fetcher       PageFetcher
	Extractor     *extractor.Extractor
	Prober        LogoProber
	Scorer        *logo.Scorer
	Enhancer      Enhancer
	FallbackPaths []string
}

// Pipeline produces brand profiles. It holds no per-request state and is
// safe for concurrent use.
type Pipeline struct {
	fetcher   PageFetcher
	extractor *extractor.Extractor
	prober    LogoProber
	scorer    *logo.Scorer
	enhancer  Enhancer
	fallbacks []string
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	if opts.Fetcher == nil {
		opts.Fetcher = fetcher.New(fetcher.Options{})
	}
	if opts.Extractor == nil {
		opts.Extractor = extractor.New(extractor.DefaultVocabulary())
	}
	if opts.Prober == nil {
		opts.Prober = logo.NewProber(logo.ProberOptions{})
	}
	if opts.Scorer == nil {
		opts.Scorer = logo.NewScorer(logo.DefaultWeights())
	}
	if opts.FallbackPaths == nil {
		opts.FallbackPaths = logo.DefaultFallbackPaths
	}
	return &Pipeline{
		fetcher:   opts.Fetcher,
		extractor: opts.Extractor,
		prober:    opts.Prober,
		scorer:    opts.Scorer,
		enhancer:  opts.Enhancer,
		fallbacks: opts.FallbackPaths,
	}
}

// NewFromConfig builds a Pipeline with production components.
func NewFromConfig(cfg *config.Config) *Pipeline {
	opts := Options{
		Fetcher: fetcher.New(fetcher.Options{
			Timeout:      cfg.Fetch.Timeout,
			MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
			UserAgent:    cfg.Fetch.UserAgent,
		}),
		Prober: logo.NewProber(logo.ProberOptions{
			Concurrency:       cfg.Probe.Concurrency,
			Timeout:           cfg.Probe.Timeout,
			RequestsPerSecond: cfg.Probe.RequestsPerSecond,
			Burst:             cfg.Probe.Burst,
			UserAgent:         cfg.Fetch.UserAgent,
		}),
	}
	if cfg.Enhance.Enabled() {
		opts.Enhancer = enhance.New(enhance.Options{
			APIToken:     cfg.Enhance.APIToken,
			BaseURL:      cfg.Enhance.BaseURL,
			ModelVersion: cfg.Enhance.ModelVersion,
			PollInterval: cfg.Enhance.PollInterval,
			Deadline:     cfg.Enhance.Deadline,
			MaxPolls:     cfg.Enhance.MaxPolls,
			MaxTokens:    cfg.Enhance.MaxTokens,
		})
	}
	return New(opts)
}

// Run profiles the website at raw. Only INVALID_URL and FETCH_FAILED are
// returned as errors; every later stage degrades to what it could find.
func (p *Pipeline) Run(ctx context.Context, raw string) (*models.BrandProfile, models.TimingInfo, error) {
	var timing models.TimingInfo
	start := time.Now()

	page, err := p.fetcher.Fetch(ctx, raw)
	timing.FetchMs = time.Since(start).Milliseconds()
	if err != nil {
		timing.TotalMs = time.Since(start).Milliseconds()
		return nil, timing, err
	}

	extractStart := time.Now()
	signals := p.extractor.Extract(page.HTML, page.Origin)
	candidates := logo.Normalize(signals.LogoCandidates, page.Origin, signals.CompanyName, p.fallbacks)
	timing.ExtractMs = time.Since(extractStart).Milliseconds()

	// Probing and enhancement write disjoint results and run side by side.
	var (
		ranked []logo.Candidate
		ai     enhance.Result
		g      errgroup.Group
	)
	g.Go(func() error {
		t := time.Now()
		ranked = p.scorer.Rank(p.prober.Probe(ctx, candidates), signals.CompanyName)
		timing.RankMs = time.Since(t).Milliseconds()
		return nil
	})
	if p.enhancer != nil {
		g.Go(func() error {
			t := time.Now()
			ai = p.enhancer.Enhance(ctx, enhance.Input{
				Origin:         page.Origin,
				HTML:           page.HTML,
				CompanyName:    signals.CompanyName,
				Description:    signals.Description,
				Colors:         signals.Colors,
				Keywords:       signals.Keywords,
				LogoCandidates: signals.LogoCandidates,
			})
			timing.EnhanceMs = time.Since(t).Milliseconds()
			return nil
		})
	}
	_ = g.Wait()

	profile := Resolve(ResolveInput{Signals: signals, Ranked: ranked, AI: ai})
	timing.TotalMs = time.Since(start).Milliseconds()

	slog.Info("brand profile resolved",
		"url", page.URL,
		"company", profile.CompanyName,
		"candidates", len(candidates),
		"probed_ok", len(ranked),
		"enhanced", !ai.IsZero(),
		"total_ms", timing.TotalMs,
		"fetch_ms", timing.FetchMs,
		"rank_ms", timing.RankMs,
		"enhance_ms", timing.EnhanceMs,
	)
	return profile, timing, nil
}

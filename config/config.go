package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Fetch   FetchConfig
	Probe   ProbeConfig
	Enhance EnhanceConfig
	Cache   CacheConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// RequestTimeout bounds one brand extraction end to end.
	RequestTimeout time.Duration // default: 60s
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// FetchConfig controls the page fetcher.
type FetchConfig struct {
	// Timeout is the hard deadline for a single fetch attempt (per scheme).
	Timeout time.Duration // default: 10s

	// MaxBodyBytes caps the decoded HTML size.
	MaxBodyBytes int64 // default: 5 MB

	// UserAgent overrides the Chrome user agent.
	UserAgent string
}

// ProbeConfig controls logo candidate probing.
type ProbeConfig struct {
	// Concurrency is the number of simultaneous probes.
	Concurrency int // default: 6

	// Timeout is the deadline for a single probe.
	Timeout time.Duration // default: 5s

	// RequestsPerSecond paces probes against the target site.
	RequestsPerSecond float64 // default: 20

	// Burst is the token bucket size for probe pacing.
	Burst int // default: 6
}

// EnhanceConfig controls the optional AI enhancement step.
// Enhancement is disabled unless both APIToken and ModelVersion are set.
type EnhanceConfig struct {
	APIToken     string
	BaseURL      string // default: "https://api.replicate.com/v1"
	ModelVersion string

	// PollInterval is the delay between status polls.
	PollInterval time.Duration // default: 1s

	// Deadline bounds submission plus polling.
	Deadline time.Duration // default: 45s

	// MaxPolls is the hard ceiling on status lookups.
	MaxPolls int // default: 60

	// MaxTokens is forwarded to the model.
	MaxTokens int // default: 1024
}

// CacheConfig controls the in-memory profile cache used by the API server.
type CacheConfig struct {
	// MaxEntries bounds the cache; 0 disables caching.
	MaxEntries int // default: 500

	// TTL is how long a profile is served from memory.
	TTL time.Duration // default: 1h
}

// Enabled reports whether profiles should be cached.
func (c CacheConfig) Enabled() bool {
	return c.MaxEntries > 0 && c.TTL > 0
}

// Enabled reports whether enhancement credentials are configured.
func (c EnhanceConfig) Enabled() bool {
	return c.APIToken != "" && c.ModelVersion != ""
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           envOr("BRANDKIT_HOST", "0.0.0.0"),
			Port:           envIntOr("BRANDKIT_PORT", 8080),
			Mode:           envOr("BRANDKIT_MODE", "release"),
			RequestTimeout: envDurationOr("BRANDKIT_REQUEST_TIMEOUT", 60*time.Second),
		},
		Log: LogConfig{
			Level:  envOr("BRANDKIT_LOG_LEVEL", "info"),
			Format: envOr("BRANDKIT_LOG_FORMAT", "json"),
		},
		Fetch: FetchConfig{
			Timeout:      envDurationOr("BRANDKIT_FETCH_TIMEOUT", 10*time.Second),
			MaxBodyBytes: int64(envIntOr("BRANDKIT_FETCH_MAX_BYTES", 5<<20)),
			UserAgent:    os.Getenv("BRANDKIT_USER_AGENT"),
		},
		Probe: ProbeConfig{
			Concurrency:       envIntOr("BRANDKIT_PROBE_CONCURRENCY", 6),
			Timeout:           envDurationOr("BRANDKIT_PROBE_TIMEOUT", 5*time.Second),
			RequestsPerSecond: envFloatOr("BRANDKIT_PROBE_RPS", 20),
			Burst:             envIntOr("BRANDKIT_PROBE_BURST", 6),
		},
		Enhance: EnhanceConfig{
			APIToken:     firstEnv("BRANDKIT_ENHANCE_TOKEN", "REPLICATE_API_TOKEN"),
			BaseURL:      envOr("BRANDKIT_ENHANCE_URL", "https://api.replicate.com/v1"),
			ModelVersion: os.Getenv("BRANDKIT_ENHANCE_VERSION"),
			PollInterval: envDurationOr("BRANDKIT_ENHANCE_POLL_INTERVAL", time.Second),
			Deadline:     envDurationOr("BRANDKIT_ENHANCE_DEADLINE", 45*time.Second),
			MaxPolls:     envIntOr("BRANDKIT_ENHANCE_MAX_POLLS", 60),
			MaxTokens:    envIntOr("BRANDKIT_ENHANCE_MAX_TOKENS", 1024),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("BRANDKIT_CACHE_MAX_ENTRIES", 500),
			TTL:        envDurationOr("BRANDKIT_CACHE_TTL", time.Hour),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

package rag

import (
	"time"

	"github.com/rotemx/RAG-sub001/latency"
)

// Defaults applied by DefaultConfig.
const (
	DefaultTopK             = 5
	DefaultMaxContextTokens = 3000
	DefaultCacheTTL         = 5 * time.Minute
	DefaultCacheMaxSize     = 100
)

// Config holds pipeline behavior settings. Zero values are replaced by
// defaults at construction.
type Config struct {
	// DefaultTopK is used when QueryInput.TopK is zero.
	DefaultTopK int

	// DefaultScoreThreshold is used when QueryInput.ScoreThreshold is zero.
	DefaultScoreThreshold float32

	// MaxContextTokens bounds passage content in built prompts.
	MaxContextTokens int

	// EnableCache turns on response caching for non-conversational queries.
	EnableCache bool

	// CacheTTL is the response cache entry lifetime; <= 0 disables expiry.
	CacheTTL time.Duration

	// CacheMaxSize bounds the response cache entry count.
	CacheMaxSize int

	// RetrievalParamsInCacheKey includes TopK and the attribute filter in
	// cache keys so differing retrieval settings never share an answer.
	RetrievalParamsInCacheKey bool

	// EnableLatencyLogging logs a per-request latency summary through slog.
	EnableLatencyLogging bool

	// Thresholds flags slow phases in logs. Zero thresholds disable checks.
	Thresholds latency.Thresholds

	// SystemTemplate overrides the prompt builder's system message.
	SystemTemplate string
}

// DefaultConfig returns the stock pipeline configuration: topK 5, a
// 3000-token context budget, caching off.
func DefaultConfig() *Config {
	return &Config{
		DefaultTopK:               DefaultTopK,
		MaxContextTokens:          DefaultMaxContextTokens,
		CacheTTL:                  DefaultCacheTTL,
		CacheMaxSize:              DefaultCacheMaxSize,
		RetrievalParamsInCacheKey: true,
	}
}

// normalize fills zero values with defaults.
func (c *Config) normalize() {
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = DefaultTopK
	}
	if c.MaxContextTokens <= 0 {
		c.MaxContextTokens = DefaultMaxContextTokens
	}
	if c.CacheMaxSize <= 0 {
		c.CacheMaxSize = DefaultCacheMaxSize
	}
}

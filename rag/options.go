package rag

import (
	"log/slog"
	"time"

	"github.com/rotemx/RAG-sub001/cache"
	"github.com/rotemx/RAG-sub001/latency"
)

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithConfig replaces the whole configuration. Nil resets to defaults.
func WithConfig(config *Config) Option {
	return func(p *Pipeline) error {
		if config == nil {
			config = DefaultConfig()
		}
		p.config = config
		return nil
	}
}

// WithTopK sets the retrieval depth used when a query does not specify one.
func WithTopK(topK int) Option {
	return func(p *Pipeline) error {
		p.config.DefaultTopK = topK
		return nil
	}
}

// WithScoreThreshold sets the minimum similarity score used when a query
// does not specify one.
func WithScoreThreshold(threshold float32) Option {
	return func(p *Pipeline) error {
		p.config.DefaultScoreThreshold = threshold
		return nil
	}
}

// WithMaxContextTokens sets the passage budget for built prompts.
func WithMaxContextTokens(tokens int) Option {
	return func(p *Pipeline) error {
		p.config.MaxContextTokens = tokens
		return nil
	}
}

// WithCache enables or disables response caching.
func WithCache(enabled bool) Option {
	return func(p *Pipeline) error {
		p.config.EnableCache = enabled
		return nil
	}
}

// WithCacheTTL sets the response cache entry lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Pipeline) error {
		p.config.CacheTTL = ttl
		return nil
	}
}

// WithCacheMaxSize bounds the response cache entry count.
func WithCacheMaxSize(size int) Option {
	return func(p *Pipeline) error {
		p.config.CacheMaxSize = size
		return nil
	}
}

// WithCacheObserver registers an observer on the response cache,
// typically a metrics adapter.
func WithCacheObserver(observer cache.Observer) Option {
	return func(p *Pipeline) error {
		p.cacheObserver = observer
		return nil
	}
}

// WithLatencyLogging logs a latency summary for every request.
func WithLatencyLogging(enabled bool) Option {
	return func(p *Pipeline) error {
		p.config.EnableLatencyLogging = enabled
		return nil
	}
}

// WithThresholds sets latency limits that flag slow phases in logs.
func WithThresholds(thresholds latency.Thresholds) Option {
	return func(p *Pipeline) error {
		p.config.Thresholds = thresholds
		return nil
	}
}

// WithSystemTemplate overrides the generation system message.
func WithSystemTemplate(template string) Option {
	return func(p *Pipeline) error {
		p.config.SystemTemplate = template
		return nil
	}
}

// WithMonitor registers a monitor observing pipeline execution.
// Monitors must not affect control flow.
func WithMonitor(monitor Monitor) Option {
	return func(p *Pipeline) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		p.monitor = monitor
		return nil
	}
}

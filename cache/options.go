package cache

import "time"

// DefaultMaxSize bounds the cache when no explicit size is configured.
const DefaultMaxSize = 100

// Option customizes a ResponseCache.
type Option func(*ResponseCache)

// WithMaxSize sets the entry capacity. Values <= 0 fall back to
// DefaultMaxSize.
func WithMaxSize(size int) Option {
	return func(c *ResponseCache) {
		c.maxSize = size
	}
}

// WithTTL sets the entry lifetime. A TTL <= 0 disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *ResponseCache) {
		c.ttl = ttl
	}
}

// WithRetrievalParamsInKey includes TopK and the attribute filter in the
// cache key, so the same question with different retrieval settings
// occupies separate entries.
func WithRetrievalParamsInKey(include bool) Option {
	return func(c *ResponseCache) {
		c.includeParams = include
	}
}

// WithObserver registers a callback invoked on cache events. The
// observer runs synchronously under the cache lock and must not call
// back into the cache.
func WithObserver(observer Observer) Option {
	return func(c *ResponseCache) {
		c.observer = observer
	}
}

// WithClock overrides the time source. Tests use this to control TTL
// expiry deterministically.
func WithClock(now func() time.Time) Option {
	return func(c *ResponseCache) {
		c.now = now
	}
}

package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/rotemx/RAG-sub001/core"
)

// EventType identifies a cache state change.
type EventType string

const (
	EventHit    EventType = "hit"
	EventMiss   EventType = "miss"
	EventSet    EventType = "set"
	EventEvict  EventType = "evict"
	EventExpire EventType = "expire"
	EventClear  EventType = "clear"
)

// Event describes a cache state change for observers.
type Event struct {
	Type  EventType
	Key   string
	Query string
}

// Observer receives cache events for metrics. Observers run
// synchronously under the cache lock: they must be fast and must not
// call back into the cache.
type Observer func(Event)

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Size        int
	MaxSize     int
	Hits        int64
	Misses      int64
	HitRate     float64
	Evictions   int64
	Expirations int64
}

type cacheEntry struct {
	key         string
	query       string
	response    *core.PipelineResponse
	storedAt    time.Time
	lastAccess  time.Time
	accessCount int64
}

// ResponseCache memoizes pipeline responses behind an LRU with per-entry
// TTL. All methods are safe for concurrent use and none of them return
// an error: ambiguity degrades to a miss.
type ResponseCache struct {
	mu            sync.Mutex
	maxSize       int
	ttl           time.Duration
	includeParams bool
	observer      Observer
	now           func() time.Time

	// order front is most recently used; entries maps cache keys to
	// their list element.
	order   *list.List
	entries map[string]*list.Element

	hits        int64
	misses      int64
	evictions   int64
	expirations int64
}

// NewResponseCache creates a cache with the given options.
func NewResponseCache(opts ...Option) *ResponseCache {
	c := &ResponseCache{
		maxSize: DefaultMaxSize,
		now:     time.Now,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxSize <= 0 {
		c.maxSize = DefaultMaxSize
	}
	return c
}

// Get returns a copy of the cached response for the input, refreshing
// its LRU position. Expired entries are removed and reported as misses.
func (c *ResponseCache) Get(input *core.QueryInput) (*core.PipelineResponse, bool) {
	if input == nil {
		input = &core.QueryInput{}
	}
	key := Fingerprint(input, c.includeParams)

	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if ok && c.expired(element.Value.(*cacheEntry)) {
		c.removeExpired(element)
		ok = false
	}
	if !ok {
		c.misses++
		c.emit(Event{Type: EventMiss, Key: key, Query: input.Query})
		return nil, false
	}

	entry := element.Value.(*cacheEntry)
	entry.accessCount++
	entry.lastAccess = c.now()
	c.order.MoveToFront(element)
	c.hits++
	c.emit(Event{Type: EventHit, Key: key, Query: entry.query})
	return entry.response.Clone(), true
}

// Set stores a copy of the response under the input's fingerprint,
// evicting the least recently used entry when the cache is full.
func (c *ResponseCache) Set(input *core.QueryInput, response *core.PipelineResponse) {
	if response == nil {
		return
	}
	if input == nil {
		input = &core.QueryInput{}
	}
	key := Fingerprint(input, c.includeParams)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		entry := element.Value.(*cacheEntry)
		entry.query = input.Query
		entry.response = response.Clone()
		entry.storedAt = now
		entry.lastAccess = now
		entry.accessCount = 1
		c.order.MoveToFront(element)
		c.emit(Event{Type: EventSet, Key: key, Query: input.Query})
		return
	}

	if c.order.Len() >= c.maxSize {
		c.evictOldest()
	}

	entry := &cacheEntry{
		key:         key,
		query:       input.Query,
		response:    response.Clone(),
		storedAt:    now,
		lastAccess:  now,
		accessCount: 1,
	}
	c.entries[key] = c.order.PushFront(entry)
	c.emit(Event{Type: EventSet, Key: key, Query: input.Query})
}

// Has reports whether a live entry exists for the input. Unlike Get it
// does not refresh recency or count toward the hit rate, but it does
// remove an entry found expired.
func (c *ResponseCache) Has(input *core.QueryInput) bool {
	if input == nil {
		input = &core.QueryInput{}
	}
	key := Fingerprint(input, c.includeParams)

	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if ok && c.expired(element.Value.(*cacheEntry)) {
		c.removeExpired(element)
		return false
	}
	return ok
}

// Delete removes the entry for the input, reporting whether a live
// entry was removed.
func (c *ResponseCache) Delete(input *core.QueryInput) bool {
	if input == nil {
		input = &core.QueryInput{}
	}
	key := Fingerprint(input, c.includeParams)

	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.expired(element.Value.(*cacheEntry)) {
		c.removeExpired(element)
		return false
	}

	c.remove(element)
	return true
}

// Prune removes every expired entry and returns how many were removed.
func (c *ResponseCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	pruned := 0
	for element := c.order.Back(); element != nil; {
		prev := element.Prev()
		if c.expired(element.Value.(*cacheEntry)) {
			c.removeExpired(element)
			pruned++
		}
		element = prev
	}
	return pruned
}

// Clear empties the cache. Counters are cumulative and survive.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	clear(c.entries)
	c.emit(Event{Type: EventClear})
}

// Stats returns a snapshot of the cache counters.
func (c *ResponseCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Size:        len(c.entries),
		MaxSize:     c.maxSize,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
	if lookups := c.hits + c.misses; lookups > 0 {
		stats.HitRate = float64(c.hits) / float64(lookups)
	}
	return stats
}

// An entry is live strictly before storedAt+ttl and absent from then on.
func (c *ResponseCache) expired(entry *cacheEntry) bool {
	if c.ttl <= 0 {
		return false
	}
	return !c.now().Before(entry.storedAt.Add(c.ttl))
}

func (c *ResponseCache) removeExpired(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	c.remove(element)
	c.expirations++
	c.emit(Event{Type: EventExpire, Key: entry.key, Query: entry.query})
}

func (c *ResponseCache) evictOldest() {
	element := c.order.Back()
	if element == nil {
		return
	}
	entry := element.Value.(*cacheEntry)
	c.remove(element)
	c.evictions++
	c.emit(Event{Type: EventEvict, Key: entry.key, Query: entry.query})
}

func (c *ResponseCache) remove(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	c.order.Remove(element)
	delete(c.entries, entry.key)
}

func (c *ResponseCache) emit(event Event) {
	if c.observer != nil {
		c.observer(event)
	}
}

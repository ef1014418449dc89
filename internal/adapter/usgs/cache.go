package usgs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
	"github.com/couchcryptid/tsunami-risk-service/internal/observability"
)

// Catalog is the query surface shared by the client and its cache.
type Catalog interface {
	Earthquakes(ctx context.Context, q domain.CatalogQuery) ([]domain.EarthquakeEvent, error)
}

// CachedCatalog wraps a Catalog with an in-memory LRU cache whose entries
// expire after a fixed TTL.
type CachedCatalog struct {
	inner   Catalog
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedCatalog creates a cache decorator around a catalog.
func NewCachedCatalog(inner Catalog, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedCatalog {
	return &CachedCatalog{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, domain.ClockOrReal(clock)),
		metrics: metrics,
	}
}

func (c *CachedCatalog) Earthquakes(ctx context.Context, q domain.CatalogQuery) ([]domain.EarthquakeEvent, error) {
	key := cacheKey(q)
	if events, ok := c.cache.get(key); ok {
		c.metrics.CatalogCache.WithLabelValues("hit").Inc()
		return events, nil
	}
	c.metrics.CatalogCache.WithLabelValues("miss").Inc()

	events, err := c.inner.Earthquakes(ctx, q)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, events)
	return events, nil
}

// cacheKey buckets the window to the minute so repeated requests within the
// TTL share an entry.
func cacheKey(q domain.CatalogQuery) string {
	b := q.Box
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f|%d|%d|%g|%d",
		b.MinLatitude, b.MaxLatitude, b.MinLongitude, b.MaxLongitude,
		q.Start.Truncate(time.Minute).Unix(), q.End.Truncate(time.Minute).Unix(),
		q.MinMagnitude, q.Limit)
}

// lruCache is a simple thread-safe LRU cache with per-entry expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key     string
	value   []domain.EarthquakeEvent
	expires time.Time
	prev    *entry
	next    *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.EarthquakeEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.EarthquakeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}

package neows

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/neo-risk-service/internal/domain"
	"github.com/couchcryptid/neo-risk-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Freshness windows for cached responses.
const (
	DefaultFeedTTL   = 5 * time.Minute
	DefaultLookupTTL = 10 * time.Minute
)

// CachedRepository wraps a NeoRepository with in-memory LRU caches that expire
// entries after a TTL. Concurrent misses for the same key share one upstream
// call. Errors are never cached. Returned values are shared between callers
// and must not be modified.
type CachedRepository struct {
	inner     domain.NeoRepository
	feeds     *lruCache[domain.Feed]
	neos      *lruCache[domain.NeoRecord]
	group     singleflight.Group
	clock     clockwork.Clock
	feedTTL   time.Duration
	lookupTTL time.Duration
	metrics   *observability.Metrics
}

// NewCachedRepository creates a cache decorator holding up to maxEntries
// feeds and maxEntries lookups.
func NewCachedRepository(inner domain.NeoRepository, maxEntries int, metrics *observability.Metrics) *CachedRepository {
	return &CachedRepository{
		inner:     inner,
		feeds:     newLRUCache[domain.Feed](maxEntries),
		neos:      newLRUCache[domain.NeoRecord](maxEntries),
		clock:     clockwork.NewRealClock(),
		feedTTL:   DefaultFeedTTL,
		lookupTTL: DefaultLookupTTL,
		metrics:   metrics,
	}
}

func (c *CachedRepository) Feed(ctx context.Context, start, end time.Time) (domain.Feed, error) {
	key := fmt.Sprintf("feed:%s|%s", start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	if feed, ok := c.feeds.get(key, c.clock.Now()); ok {
		c.metrics.CacheLookups.WithLabelValues(endpointFeed, "hit").Inc()
		return feed, nil
	}
	c.metrics.CacheLookups.WithLabelValues(endpointFeed, "miss").Inc()

	// The shared call outlives any single caller; the client timeout bounds it.
	ch := c.group.DoChan(key, func() (any, error) {
		feed, err := c.inner.Feed(context.WithoutCancel(ctx), start, end)
		if err != nil {
			return domain.Feed{}, err
		}
		now := c.clock.Now()
		c.feeds.put(key, feed, now, now.Add(c.feedTTL))
		return feed, nil
	})
	return awaitShared[domain.Feed](ctx, ch)
}

func (c *CachedRepository) Lookup(ctx context.Context, id string) (domain.NeoRecord, error) {
	key := "neo:" + id
	if rec, ok := c.neos.get(key, c.clock.Now()); ok {
		c.metrics.CacheLookups.WithLabelValues(endpointLookup, "hit").Inc()
		return rec, nil
	}
	c.metrics.CacheLookups.WithLabelValues(endpointLookup, "miss").Inc()

	ch := c.group.DoChan(key, func() (any, error) {
		rec, err := c.inner.Lookup(context.WithoutCancel(ctx), id)
		if err != nil {
			return domain.NeoRecord{}, err
		}
		now := c.clock.Now()
		c.neos.put(key, rec, now, now.Add(c.lookupTTL))
		return rec, nil
	})
	return awaitShared[domain.NeoRecord](ctx, ch)
}

// awaitShared waits for a shared call or for the caller's own ctx, whichever
// finishes first.
func awaitShared[V any](ctx context.Context, ch <-chan singleflight.Result) (V, error) {
	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// lruCache is a thread-safe LRU cache whose entries expire. Entries hang off a
// circular list anchored at root: root.next is the most recently used and
// root.prev the least.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	root       entry[V]
}

type entry[V any] struct {
	key        string
	value      V
	expires    time.Time
	prev, next *entry[V]
}

func (e *entry[V]) expiredAt(now time.Time) bool {
	return !now.Before(e.expires)
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	c := &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
	c.root.prev = &c.root
	c.root.next = &c.root
	return c
}

// get returns the value for key unless it is missing or expired at now.
// Expired entries are dropped.
func (c *lruCache[V]) get(key string, now time.Time) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if e.expiredAt(now) {
		c.drop(e)
		return zero, false
	}
	c.touch(e)
	return e.value, true
}

// put stores value under key until expires. A full cache first sheds entries
// already expired at now and only then the least recently used live one.
func (c *lruCache[V]) put(key string, value V, now, expires time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.touch(e)
		return
	}
	if len(c.entries) >= c.maxEntries {
		c.makeRoom(now)
	}
	e := &entry[V]{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.link(e)
}

func (c *lruCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) makeRoom(now time.Time) {
	for e := c.root.prev; e != &c.root; {
		prev := e.prev
		if e.expiredAt(now) {
			c.drop(e)
		}
		e = prev
	}
	if len(c.entries) >= c.maxEntries && c.root.prev != &c.root {
		c.drop(c.root.prev)
	}
}

func (c *lruCache[V]) touch(e *entry[V]) {
	c.unlink(e)
	c.link(e)
}

// link inserts e as the most recently used entry.
func (c *lruCache[V]) link(e *entry[V]) {
	e.prev = &c.root
	e.next = c.root.next
	c.root.next.prev = e
	c.root.next = e
}

func (c *lruCache[V]) unlink(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
}

func (c *lruCache[V]) drop(e *entry[V]) {
	delete(c.entries, e.key)
	c.unlink(e)
}

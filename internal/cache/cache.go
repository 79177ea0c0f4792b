// Package cache implements the query cache: a keyed store of in-flight and
// resolved search results with staleness and eviction timers, request
// coalescing and stale-while-revalidate refetching.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// Fetcher resolves a cache key to fresh data. The cache calls it at most
// once per key while a request is outstanding, regardless of how many
// subscribers are attached.
type Fetcher func(ctx context.Context, key string) (*domain.SearchResult, error)

// Subscriber receives entry snapshots: once on subscription and on every
// state change afterwards.
type Subscriber func(entry domain.CacheEntry)

// Config holds cache tuning knobs.
type Config struct {
	// StaleAfter is the staleness window: cached data older than this is
	// eligible for background refetch on the next use.
	StaleAfter time.Duration

	// RetainFor is the retention window: how long an entry with no
	// subscribers is kept before eviction.
	RetainFor time.Duration

	// Store is an optional persistent warm tier. May be nil.
	Store driven.ResultStore

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults. The staleness window matches
// the backend's own search-cache TTL.
func DefaultConfig() Config {
	return Config{
		StaleAfter: 3 * time.Minute,
		RetainFor:  5 * time.Minute,
	}
}

type entry struct {
	key           string
	status        domain.CacheStatus
	data          *domain.SearchResult
	err           error
	lastFetchedAt time.Time

	// stale marks the entry invalidated regardless of age.
	stale bool

	subscribers map[string]Subscriber

	// fetchSeq tags the in-flight request; a response whose tag no longer
	// matches is discarded on arrival, not applied.
	fetchSeq uint64
	inflight bool
	done     chan struct{}

	gcTimer *time.Timer
}

// Cache is the process-wide shared query/result store. All entry reads and
// writes go through its operations; entry state is never reachable from
// outside except as immutable snapshots.
type Cache struct {
	mu      sync.Mutex
	fetch   Fetcher
	cfg     Config
	logger  *slog.Logger
	entries map[string]*entry
	now     func() time.Time
}

// New creates a query cache around a fetcher.
func New(fetch Fetcher, cfg Config) *Cache {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultConfig().StaleAfter
	}
	if cfg.RetainFor <= 0 {
		cfg.RetainFor = DefaultConfig().RetainFor
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		fetch:   fetch,
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// snapshotLocked builds an immutable view of an entry.
func (c *Cache) snapshotLocked(e *entry) domain.CacheEntry {
	return domain.CacheEntry{
		Key:           e.key,
		Status:        e.status,
		Data:          e.data,
		Err:           e.err,
		LastFetchedAt: e.lastFetchedAt,
		Subscribers:   len(e.subscribers),
	}
}

// notifyLocked collects subscriber callbacks with the current snapshot.
// The returned function must be called after the lock is released, since
// subscribers are free to call back into the cache.
func (c *Cache) notifyLocked(e *entry) func() {
	if len(e.subscribers) == 0 {
		return func() {}
	}
	snap := c.snapshotLocked(e)
	subs := make([]Subscriber, 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		subs = append(subs, fn)
	}
	return func() {
		for _, fn := range subs {
			fn(snap)
		}
	}
}

func (c *Cache) ensureLocked(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{
			key:         key,
			status:      domain.CacheIdle,
			subscribers: make(map[string]Subscriber),
		}
		c.entries[key] = e
	}
	return e
}

// Subscribe attaches a subscriber to a key, creating the entry when
// absent, and returns a handle for Unsubscribe. The subscriber is called
// once with the current snapshot before Subscribe returns. Subscribing to
// an entry flagged by Invalidate kicks off its deferred refetch.
func (c *Cache) Subscribe(key string, fn Subscriber) string {
	c.mu.Lock()
	e := c.ensureLocked(key)
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
	id := uuid.NewString()
	e.subscribers[id] = fn

	var notify func()
	if e.stale && !e.inflight {
		// The refetch notification carries the loading snapshot to every
		// subscriber, the new one included.
		notify = c.startFetchLocked(e)
	} else {
		snap := c.snapshotLocked(e)
		notify = func() { fn(snap) }
	}
	c.mu.Unlock()

	notify()
	return id
}

// Unsubscribe detaches a subscriber. When the last subscriber leaves, the
// entry is retained for the retention window and then evicted unless
// someone resubscribes. An in-flight request is not aborted; its result is
// discarded if it lands after eviction.
func (c *Cache) Unsubscribe(key, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(e.subscribers, id)
	if len(e.subscribers) > 0 {
		return
	}
	if e.gcTimer != nil {
		e.gcTimer.Stop()
	}
	e.gcTimer = time.AfterFunc(c.cfg.RetainFor, func() {
		c.evict(key, e)
	})
}

func (c *Cache) evict(key string, old *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e != old || len(e.subscribers) > 0 {
		return
	}
	delete(c.entries, key)
	c.logger.Debug("cache entry evicted", "key", key)
}

// Entry returns a snapshot of an entry if it exists.
func (c *Cache) Entry(key string) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return domain.CacheEntry{}, false
	}
	return c.snapshotLocked(e), true
}

func (c *Cache) freshLocked(e *entry) bool {
	if e.data == nil || e.stale {
		return false
	}
	return c.now().Sub(e.lastFetchedAt) < c.cfg.StaleAfter
}

// FetchOrReuse returns the entry for a key, fetching when needed.
//
//   - Fresh data is returned without a network call.
//   - Stale data is returned immediately while a background refetch runs
//     (stale-while-revalidate); the previous data stays in place until the
//     new data arrives.
//   - With no data at all, the call blocks until the fetch settles or ctx
//     is done. A concurrent caller for the same key attaches to the same
//     in-flight request instead of issuing a duplicate.
//
// Fetch failures are not returned as errors: they land on the entry so
// the caller can render stale data, an error panel, or both. The returned
// error is non-nil only for unusable keys or a cancelled wait.
func (c *Cache) FetchOrReuse(ctx context.Context, key string) (domain.CacheEntry, error) {
	if domain.NormalizeQuery(key) == "" ||
		(domain.IsSearchKey(key) && domain.QueryFromSearchKey(key) == "") {
		return domain.CacheEntry{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	e := c.ensureLocked(key)

	if e.inflight {
		// An ongoing revalidation of an entry with previous data must not
		// block the caller: stale-while-revalidate applies whether the
		// refetch started here or elsewhere.
		if e.data != nil {
			snap := c.snapshotLocked(e)
			c.mu.Unlock()
			return snap, nil
		}
		done := e.done
		c.mu.Unlock()
		return c.waitSettled(ctx, key, done)
	}

	if c.freshLocked(e) {
		snap := c.snapshotLocked(e)
		c.mu.Unlock()
		return snap, nil
	}

	// Cold entry: seed from the warm store before going to the network,
	// so a restart renders previous results while revalidating.
	if e.data == nil && c.cfg.Store != nil {
		c.mu.Unlock()
		c.seedFromStore(ctx, key)
		c.mu.Lock()
		e = c.ensureLocked(key)
		if e.inflight {
			if e.data != nil {
				snap := c.snapshotLocked(e)
				c.mu.Unlock()
				return snap, nil
			}
			done := e.done
			c.mu.Unlock()
			return c.waitSettled(ctx, key, done)
		}
		if c.freshLocked(e) {
			snap := c.snapshotLocked(e)
			c.mu.Unlock()
			return snap, nil
		}
	}

	notify := c.startFetchLocked(e)

	if e.data != nil {
		// Stale-while-revalidate: hand back the previous data at once.
		snap := c.snapshotLocked(e)
		c.mu.Unlock()
		notify()
		return snap, nil
	}

	done := e.done
	c.mu.Unlock()
	notify()
	return c.waitSettled(ctx, key, done)
}

func (c *Cache) waitSettled(ctx context.Context, key string, done chan struct{}) (domain.CacheEntry, error) {
	select {
	case <-done:
	case <-ctx.Done():
		return domain.CacheEntry{}, ctx.Err()
	}
	snap, _ := c.Entry(key)
	return snap, nil
}

// seedFromStore loads persisted data for a cold key, marking it stale so
// the caller still revalidates.
func (c *Cache) seedFromStore(ctx context.Context, key string) {
	result, storedAt, err := c.cfg.Store.Load(ctx, key)
	if err != nil {
		return
	}

	c.mu.Lock()
	e := c.ensureLocked(key)
	var notify func()
	if e.data == nil && !e.inflight {
		e.data = result
		e.status = domain.CacheSuccess
		e.lastFetchedAt = storedAt
		notify = c.notifyLocked(e)
		c.logger.Debug("cache entry seeded from store", "key", key, "stored_at", storedAt)
	}
	c.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// startFetchLocked launches the network fetch for an entry. Caller holds
// the lock and must invoke the returned notify function after unlocking.
func (c *Cache) startFetchLocked(e *entry) func() {
	e.fetchSeq++
	seq := e.fetchSeq
	e.inflight = true
	e.status = domain.CacheLoading
	e.done = make(chan struct{})
	done := e.done
	notify := c.notifyLocked(e)

	key := e.key
	go func() {
		// Deliberately not tied to any subscriber's context: unsubscribing
		// must not abort the call, only make its result ignorable.
		result, err := c.fetch(context.Background(), key)
		c.applyFetch(key, e, seq, result, err)
		close(done)
	}()

	return notify
}

func (c *Cache) applyFetch(key string, fetched *entry, seq uint64, result *domain.SearchResult, err error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e != fetched || e.fetchSeq != seq {
		c.mu.Unlock()
		c.logger.Debug("discarding response for superseded request", "key", key)
		return
	}

	e.inflight = false
	if err != nil {
		// Previous data is left untouched: a transient error must not
		// blank an already rendered list.
		e.status = domain.CacheError
		e.err = err
		notify := c.notifyLocked(e)
		c.mu.Unlock()
		c.logger.Warn("fetch failed", "key", key, "error", err)
		notify()
		return
	}

	e.status = domain.CacheSuccess
	e.data = result
	e.err = nil
	e.stale = false
	e.lastFetchedAt = c.now()
	notify := c.notifyLocked(e)
	c.mu.Unlock()
	notify()

	if c.cfg.Store != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.cfg.Store.Save(ctx, key, result, time.Now(), c.cfg.RetainFor); err != nil {
				c.logger.Warn("result store save failed", "key", key, "error", err)
			}
		}()
	}
}

// Invalidate marks entries matching the predicate stale. Entries with
// active subscribers refetch immediately in the background; entries
// without merely stay flagged until the next subscription or use.
// Invalidating an already flagged entry is a no-op, so repeated calls are
// idempotent.
func (c *Cache) Invalidate(match func(key string) bool) {
	c.mu.Lock()
	var notifies []func()
	for key, e := range c.entries {
		if !match(key) {
			continue
		}
		e.stale = true
		if len(e.subscribers) > 0 && !e.inflight {
			notifies = append(notifies, c.startFetchLocked(e))
		}
	}
	c.mu.Unlock()
	for _, fn := range notifies {
		fn()
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

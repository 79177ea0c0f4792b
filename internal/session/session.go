// Package session ties the query cache to the loading indicator for one
// search surface: it tracks the current submission, routes cache
// notifications for that submission only, and enforces the minimum
// visible-loading time.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/malcha/dagu-client/internal/cache"
	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driving"
)

// Ensure Session implements SearchSession
var _ driving.SearchSession = (*Session)(nil)

// Config holds session tuning knobs.
type Config struct {
	// MinLoading is the minimum time the loading indicator stays visible
	// per submission, even when the answer is already cached.
	MinLoading time.Duration

	// OnChange, when non-nil, fires on every snapshot change.
	OnChange func(driving.SessionSnapshot)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the standard minimum loading floor.
func DefaultConfig() Config {
	return Config{MinLoading: 800 * time.Millisecond}
}

// Session is a single search surface over the shared cache. Submitting a
// query supersedes the previous one: notifications and responses for the
// old query no longer reach this session's snapshot.
type Session struct {
	mu     sync.Mutex
	cache  *cache.Cache
	loader *Loader
	cfg    Config
	logger *slog.Logger

	query string
	key   string
	subID string
	entry domain.CacheEntry

	closed bool
}

// New creates a session over a cache.
func New(c *cache.Cache, cfg Config) *Session {
	if cfg.MinLoading <= 0 {
		cfg.MinLoading = DefaultConfig().MinLoading
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		cache:  c,
		cfg:    cfg,
		logger: logger,
	}
	s.loader = NewLoader(cfg.MinLoading, func(domain.LoaderState) {
		s.notify()
	})
	return s
}

// Submit makes a query the session's current one and kicks off its load.
// The call returns once the submission is registered; results arrive via
// the snapshot. Submitting while a previous query is still loading
// supersedes it: the stale response settles in the cache but never
// reaches this session.
func (s *Session) Submit(ctx context.Context, query string) error {
	query = domain.NormalizeQuery(query)
	if query == "" {
		return fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	key := domain.SearchKey(query)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("submit %q: session closed", query)
	}
	if s.subID != "" {
		s.cache.Unsubscribe(s.key, s.subID)
		s.subID = ""
	}
	s.query = query
	s.key = key
	s.entry = domain.CacheEntry{Key: key}
	s.mu.Unlock()

	// Loading shows for every submission, cache-hot or not.
	s.loader.Begin()

	subID := s.cache.Subscribe(key, func(entry domain.CacheEntry) {
		s.observe(key, entry)
	})

	s.mu.Lock()
	if s.key != key || s.closed {
		// Superseded before the subscription landed.
		s.mu.Unlock()
		s.cache.Unsubscribe(key, subID)
		return nil
	}
	s.subID = subID
	s.mu.Unlock()

	go func() {
		entry, err := s.cache.FetchOrReuse(ctx, key)
		if err != nil {
			s.logger.Warn("submit fetch failed", "query", query, "error", err)
			s.settleIfCurrent(key)
			return
		}
		s.observe(key, entry)
	}()
	return nil
}

// observe folds a cache notification into the session, ignoring entries
// for anything but the current submission.
func (s *Session) observe(key string, entry domain.CacheEntry) {
	s.mu.Lock()
	if s.closed || s.key != key {
		s.mu.Unlock()
		return
	}
	s.entry = entry
	settled := entry.Settled()
	s.mu.Unlock()

	if settled {
		s.loader.SettleNetwork()
	}
	s.notify()
}

func (s *Session) settleIfCurrent(key string) {
	s.mu.Lock()
	current := !s.closed && s.key == key
	s.mu.Unlock()
	if current {
		s.loader.SettleNetwork()
		s.notify()
	}
}

func (s *Session) notify() {
	if s.cfg.OnChange == nil {
		return
	}
	s.cfg.OnChange(s.Snapshot())
}

// Snapshot returns the current query, its cache entry, and the loader
// state.
func (s *Session) Snapshot() driving.SessionSnapshot {
	s.mu.Lock()
	snap := driving.SessionSnapshot{
		Query: s.query,
		Entry: s.entry,
	}
	s.mu.Unlock()
	snap.Loader = s.loader.State()
	return snap
}

// Close detaches the session from the cache. Cached data stays behind
// for the retention window so a reopened session starts warm.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	key, subID := s.key, s.subID
	s.subID = ""
	s.mu.Unlock()

	if subID != "" {
		s.cache.Unsubscribe(key, subID)
	}
	s.loader.Close()
}

package domain

import "time"

// CacheStatus is the lifecycle state of a cache entry.
type CacheStatus string

const (
	CacheIdle    CacheStatus = "idle"
	CacheLoading CacheStatus = "loading"
	CacheSuccess CacheStatus = "success"
	CacheError   CacheStatus = "error"
)

// CacheEntry is an immutable snapshot of one query-cache entry, as handed
// to subscribers. Data and Err coexist: a failed refetch keeps the last
// successful data so a transient error never blanks a rendered list.
type CacheEntry struct {
	Key           string
	Status        CacheStatus
	Data          *SearchResult
	Err           error
	LastFetchedAt time.Time
	Subscribers   int
}

// Settled reports whether the entry's network activity has concluded,
// successfully or not.
func (e CacheEntry) Settled() bool {
	return e.Status == CacheSuccess || e.Status == CacheError
}

// LoaderState is the visible-loading state machine snapshot.
// Invariant: Visible == !(NetworkSettled && MinTimeElapsed).
type LoaderState struct {
	Visible        bool
	NetworkSettled bool
	MinTimeElapsed bool
}

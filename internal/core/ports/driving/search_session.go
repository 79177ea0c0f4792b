package driving

import (
	"context"

	"github.com/malcha/dagu-client/internal/core/domain"
)

// SessionSnapshot is what the UI renders: the current query, its cache
// entry and the loader gate.
type SessionSnapshot struct {
	Query  string
	Entry  domain.CacheEntry
	Loader domain.LoaderState
}

// SearchSession drives one search surface. A submission resets the
// minimum-loading gate even when the query is cache-hot, and results for
// superseded submissions never reach the render callback.
type SearchSession interface {
	// Submit starts a new search. Empty queries are ignored.
	Submit(ctx context.Context, query string) error

	// Snapshot returns the current render state.
	Snapshot() SessionSnapshot

	// Close unsubscribes from the cache and stops timers.
	Close()
}

package driven

import (
	"context"
	"time"

	"github.com/malcha/dagu-client/internal/core/domain"
)

// ResultStore is an optional persistent warm tier under the in-memory
// query cache. A cold cache seeds entries from it as already-stale data,
// so a restart renders previous results while revalidating instead of
// flashing empty.
type ResultStore interface {
	// Save persists a successful result with a TTL.
	Save(ctx context.Context, key string, result *domain.SearchResult, storedAt time.Time, ttl time.Duration) error

	// Load returns a stored result and when it was stored.
	// Returns domain.ErrNotFound when the key is absent or expired.
	Load(ctx context.Context, key string) (*domain.SearchResult, time.Time, error)

	// Delete removes a stored result. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

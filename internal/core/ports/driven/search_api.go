package driven

import (
	"context"

	"github.com/malcha/dagu-client/internal/core/domain"
)

// SearchAPI is the remote read surface: merged search, trending terms and
// catalog autocomplete. Implementations carry the session cookie
// automatically; callers never see transport details.
type SearchAPI interface {
	// Search fetches the merged, price-ordered result set for a query.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResult, error)

	// PopularTerms returns the current trending search terms, most popular
	// first.
	PopularTerms(ctx context.Context, limit int) ([]string, error)

	// Instruments returns catalog records matching a partial search term,
	// for autocomplete.
	Instruments(ctx context.Context, search string, limit int) ([]domain.Instrument, error)

	// Listings returns active user listings, optionally narrowed to the
	// caller's own.
	Listings(ctx context.Context, onlyMine bool) ([]domain.Item, error)
}

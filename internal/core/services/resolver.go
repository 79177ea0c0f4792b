package services

import (
	"context"
	"fmt"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// Resolver maps cache keys to backend fetches. It is the fetcher the
// query cache is wired with: search keys go through merged search,
// listing keys through the listings endpoint wrapped in a result shape.
type Resolver struct {
	api  driven.SearchAPI
	opts domain.SearchOptions
}

// NewResolver creates a resolver with fixed search options.
func NewResolver(api driven.SearchAPI, opts domain.SearchOptions) *Resolver {
	if opts.Display <= 0 {
		opts = domain.DefaultSearchOptions()
	}
	return &Resolver{api: api, opts: opts}
}

// Fetch resolves one cache key.
func (r *Resolver) Fetch(ctx context.Context, key string) (*domain.SearchResult, error) {
	switch {
	case domain.IsSearchKey(key):
		return r.api.Search(ctx, domain.QueryFromSearchKey(key), r.opts)
	case domain.IsListingKey(key):
		view := domain.ViewFromListingKey(key)
		switch view {
		case domain.ListingViewMine, domain.ListingViewAll:
			items, err := r.api.Listings(ctx, view == domain.ListingViewMine)
			if err != nil {
				return nil, err
			}
			return &domain.SearchResult{
				Query:      key,
				TotalCount: len(items),
				Items:      items,
			}, nil
		default:
			return nil, fmt.Errorf("%w: unknown listings view %q", domain.ErrInvalidInput, view)
		}
	default:
		return nil, fmt.Errorf("%w: unknown cache key %q", domain.ErrInvalidInput, key)
	}
}

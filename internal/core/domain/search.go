package domain

import "strings"

// SearchOptions configures a search request
type SearchOptions struct {
	// Display caps the number of merged results. The backend clamps it to
	// 1..100 as well; clamping here keeps cache keys honest.
	Display int `json:"display"`
}

// DefaultSearchOptions returns sensible defaults
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Display: 20}
}

// ReferenceItem is the catalog baseline used for discount computation.
type ReferenceItem struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	ImageURL string `json:"image_url"`
}

// SearchResult is a merged, price-ordered result set for one query.
// The query cache owns instances of this type and replaces them wholesale
// on refetch; they are never mutated in place.
type SearchResult struct {
	Query      string         `json:"query"`
	TotalCount int            `json:"total_count"`
	Reference  *ReferenceItem `json:"reference,omitempty"`
	Items      []Item         `json:"items"`
}

// ReferencePrice returns the baseline price, or zero when no reference
// item exists for the query.
func (r *SearchResult) ReferencePrice() int {
	if r == nil || r.Reference == nil {
		return 0
	}
	return r.Reference.Price
}

// Cache key namespaces. Invalidation predicates target whole families of
// entries, so keys carry an explicit prefix.
const (
	searchKeyPrefix  = "search:"
	listingKeyPrefix = "listings:"
)

// NormalizeQuery trims a raw query. Two queries share a cache entry iff
// their trimmed strings are byte-equal; no semantic normalization happens
// at this layer.
func NormalizeQuery(query string) string {
	return strings.TrimSpace(query)
}

// SearchKey builds the cache key for a search query.
func SearchKey(query string) string {
	return searchKeyPrefix + NormalizeQuery(query)
}

// QueryFromSearchKey recovers the query string from a search cache key.
func QueryFromSearchKey(key string) string {
	return strings.TrimPrefix(key, searchKeyPrefix)
}

// Listing views.
const (
	ListingViewMine = "mine"
	ListingViewAll  = "all"
)

// ListingKey builds the cache key for a listings view, e.g. "mine".
func ListingKey(view string) string {
	return listingKeyPrefix + view
}

// ViewFromListingKey recovers the view name from a listings cache key.
func ViewFromListingKey(key string) string {
	return strings.TrimPrefix(key, listingKeyPrefix)
}

// IsSearchKey reports whether a cache key holds search results.
func IsSearchKey(key string) bool {
	return strings.HasPrefix(key, searchKeyPrefix)
}

// IsListingKey reports whether a cache key holds a listings view.
func IsListingKey(key string) bool {
	return strings.HasPrefix(key, listingKeyPrefix)
}

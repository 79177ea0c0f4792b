package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// Ensure Client implements SearchAPI
var _ driven.SearchAPI = (*Client)(nil)

// searchPayload is the wire shape of /api/search/: raw items of both
// families plus the catalog reference.
type searchPayload struct {
	TotalCount int                   `json:"total_count"`
	Reference  *domain.ReferenceItem `json:"reference"`
	Items      []domain.RawItem      `json:"items"`
}

// Search fetches the merged result set and normalizes it for display.
func (c *Client) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	query = domain.NormalizeQuery(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	display := opts.Display
	if display < 1 {
		display = domain.DefaultSearchOptions().Display
	}
	if display > 100 {
		display = 100
	}

	params := url.Values{
		"q":       {query},
		"display": {strconv.Itoa(display)},
	}
	var payload searchPayload
	if err := c.do(ctx, http.MethodGet, "/api/search/", params, nil, &payload); err != nil {
		return nil, err
	}
	return domain.NormalizeResult(query, payload.TotalCount, payload.Reference, payload.Items, c.viewerID(ctx)), nil
}

// PopularTerms returns the trending search terms.
func (c *Client) PopularTerms(ctx context.Context, limit int) ([]string, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var payload struct {
		Terms []string `json:"terms"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/popular-searches/", params, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Terms, nil
}

// Instruments looks up catalog records for autocomplete. The endpoint
// answers either a bare array or a paginated {count, results} object
// depending on backend version, so decoding is tolerant of both.
func (c *Client) Instruments(ctx context.Context, search string, limit int) ([]domain.Instrument, error) {
	params := url.Values{"search": {search}}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/instruments/", params, nil, &raw); err != nil {
		return nil, err
	}

	var instruments []domain.Instrument
	if err := json.Unmarshal(raw, &instruments); err != nil {
		var paginated struct {
			Count   int                 `json:"count"`
			Results []domain.Instrument `json:"results"`
		}
		if err := json.Unmarshal(raw, &paginated); err != nil {
			return nil, fmt.Errorf("GET /api/instruments/: decode response: %w", err)
		}
		instruments = paginated.Results
	}
	if limit > 0 && len(instruments) > limit {
		instruments = instruments[:limit]
	}
	return instruments, nil
}

// Listings fetches active user listings.
func (c *Client) Listings(ctx context.Context, onlyMine bool) ([]domain.Item, error) {
	params := url.Values{}
	if onlyMine {
		params.Set("mine", "1")
	}
	var raws []domain.RawItem
	if err := c.do(ctx, http.MethodGet, "/api/items/", params, nil, &raws); err != nil {
		return nil, err
	}

	viewerID := c.viewerID(ctx)
	items := make([]domain.Item, 0, len(raws))
	for _, raw := range raws {
		// Listings render without a search reference; server-sourced
		// discount rates still apply.
		items = append(items, domain.NormalizeItem(raw, 0, viewerID))
	}
	return items, nil
}

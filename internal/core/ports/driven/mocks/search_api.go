package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// Ensure MockSearchAPI implements SearchAPI
var _ driven.SearchAPI = (*MockSearchAPI)(nil)

// MockSearchAPI is an in-memory SearchAPI for testing. Results are keyed
// by query; SearchFunc, when set, replaces the canned lookup entirely so
// tests can block or fail individual fetches.
type MockSearchAPI struct {
	mu          sync.Mutex
	results     map[string]*domain.SearchResult
	terms       []string
	instruments []domain.Instrument
	listings    []domain.Item
	searchCalls int

	// SearchFunc overrides Search when non-nil.
	SearchFunc func(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResult, error)

	// Err, when set, is returned by every canned call.
	Err error
}

// NewMockSearchAPI creates a new MockSearchAPI
func NewMockSearchAPI() *MockSearchAPI {
	return &MockSearchAPI{
		results: make(map[string]*domain.SearchResult),
	}
}

// SetResult registers a canned result for a query.
func (m *MockSearchAPI) SetResult(query string, result *domain.SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[query] = result
}

// SetTerms registers canned popular terms.
func (m *MockSearchAPI) SetTerms(terms []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terms = terms
}

// SetInstruments registers canned catalog records.
func (m *MockSearchAPI) SetInstruments(instruments []domain.Instrument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instruments = instruments
}

// SetListings registers canned user-listing records.
func (m *MockSearchAPI) SetListings(items []domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings = items
}

// SearchCalls returns how many Search calls were made.
func (m *MockSearchAPI) SearchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls
}

// Search returns the canned result for the query, or an empty result.
func (m *MockSearchAPI) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	m.mu.Lock()
	m.searchCalls++
	fn := m.SearchFunc
	res, ok := m.results[query]
	err := m.Err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, opts)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return &domain.SearchResult{Query: query, Items: []domain.Item{}}, nil
	}
	return res, nil
}

// PopularTerms returns the canned terms, truncated to limit.
func (m *MockSearchAPI) PopularTerms(ctx context.Context, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > len(m.terms) {
		limit = len(m.terms)
	}
	return m.terms[:limit], nil
}

// Instruments returns canned records whose name or brand contains the
// search term.
func (m *MockSearchAPI) Instruments(ctx context.Context, search string, limit int) ([]domain.Instrument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	lower := strings.ToLower(search)
	var matches []domain.Instrument
	for _, inst := range m.instruments {
		if strings.Contains(strings.ToLower(inst.Name), lower) ||
			strings.Contains(strings.ToLower(inst.Brand), lower) {
			matches = append(matches, inst)
		}
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches, nil
}

// Listings returns the canned user listings. When onlyMine is set, only
// owned items are returned.
func (m *MockSearchAPI) Listings(ctx context.Context, onlyMine bool) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if !onlyMine {
		return m.listings, nil
	}
	var mine []domain.Item
	for _, item := range m.listings {
		if item.Owned {
			mine = append(mine, item)
		}
	}
	return mine, nil
}

package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// Ensure MockMutationAPI implements MutationAPI
var _ driven.MutationAPI = (*MockMutationAPI)(nil)

// MockMutationAPI is an in-memory MutationAPI for testing. Items live in a
// map keyed by ID; per-operation errors are injectable.
type MockMutationAPI struct {
	mu     sync.Mutex
	items  map[string]*domain.Item
	nextID int
	clicks map[string]int

	// ReportResult is returned by ReportItem when set.
	ReportResult *domain.ReportResult

	// Errs holds injectable per-operation errors, keyed by operation name
	// ("create", "click", "extend", "report", "update_price").
	Errs map[string]error
}

// NewMockMutationAPI creates a new MockMutationAPI
func NewMockMutationAPI() *MockMutationAPI {
	return &MockMutationAPI{
		items:  make(map[string]*domain.Item),
		clicks: make(map[string]int),
		Errs:   make(map[string]error),
	}
}

// Seed adds an existing item.
func (m *MockMutationAPI) Seed(item *domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
}

// Clicks returns the recorded click count for an item.
func (m *MockMutationAPI) Clicks(itemID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clicks[itemID]
}

func (m *MockMutationAPI) err(op string) error {
	return m.Errs[op]
}

// CreateItem stores a new listing and returns it.
func (m *MockMutationAPI) CreateItem(ctx context.Context, input domain.CreateItemInput) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.err("create"); err != nil {
		return nil, err
	}
	m.nextID++
	item := &domain.Item{
		Kind:      domain.ItemKindUser,
		ID:        fmt.Sprintf("item-%d", m.nextID),
		Title:     input.Title,
		Price:     input.Price,
		Link:      input.Link,
		Source:    input.Source,
		Owned:     true,
		ExpiredAt: time.Now().Add(72 * time.Hour),
	}
	m.items[item.ID] = item
	return item, nil
}

// TrackClick records a click.
func (m *MockMutationAPI) TrackClick(ctx context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.err("click"); err != nil {
		return err
	}
	if _, ok := m.items[itemID]; !ok {
		return domain.ErrNotFound
	}
	m.clicks[itemID]++
	return nil
}

// ExtendItem pushes out the expiry of an item.
func (m *MockMutationAPI) ExtendItem(ctx context.Context, itemID string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.err("extend"); err != nil {
		return nil, err
	}
	item, ok := m.items[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	item.ExpiredAt = time.Now().Add(72 * time.Hour)
	now := time.Now()
	item.ExtendedAt = &now
	return item, nil
}

// ReportItem increments the report count and returns the configured
// result, or a default one.
func (m *MockMutationAPI) ReportItem(ctx context.Context, itemID string, input domain.ReportInput) (*domain.ReportResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.err("report"); err != nil {
		return nil, err
	}
	item, ok := m.items[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	item.ReportCount++
	if m.ReportResult != nil {
		return m.ReportResult, nil
	}
	return &domain.ReportResult{
		Message:     "report accepted",
		ReportCount: item.ReportCount,
	}, nil
}

// UpdatePrice sets a new price on an item.
func (m *MockMutationAPI) UpdatePrice(ctx context.Context, itemID string, price int) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.err("update_price"); err != nil {
		return nil, err
	}
	if err := domain.ValidatePrice(price); err != nil {
		return nil, err
	}
	item, ok := m.items[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	item.Price = price
	return item, nil
}

package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// Ensure MockResultStore implements ResultStore
var _ driven.ResultStore = (*MockResultStore)(nil)

type storedResult struct {
	result    *domain.SearchResult
	storedAt  time.Time
	expiresAt time.Time
}

// MockResultStore is an in-memory ResultStore for testing.
type MockResultStore struct {
	mu      sync.Mutex
	entries map[string]storedResult
	saves   int
}

// NewMockResultStore creates a new MockResultStore
func NewMockResultStore() *MockResultStore {
	return &MockResultStore{entries: make(map[string]storedResult)}
}

// Saves returns how many Save calls were made.
func (m *MockResultStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Save stores a result with a TTL.
func (m *MockResultStore) Save(ctx context.Context, key string, result *domain.SearchResult, storedAt time.Time, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.entries[key] = storedResult{
		result:    result,
		storedAt:  storedAt,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Load returns a stored result, or domain.ErrNotFound.
func (m *MockResultStore) Load(ctx context.Context, key string) (*domain.SearchResult, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, time.Time{}, domain.ErrNotFound
	}
	return entry.result, entry.storedAt, nil
}

// Delete removes a stored result.
func (m *MockResultStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

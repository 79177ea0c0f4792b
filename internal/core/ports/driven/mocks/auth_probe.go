package mocks

import (
	"context"
	"sync"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// Ensure MockAuthProbe implements AuthProbe
var _ driven.AuthProbe = (*MockAuthProbe)(nil)

// MockAuthProbe is a configurable AuthProbe for testing.
type MockAuthProbe struct {
	mu     sync.Mutex
	status domain.AuthStatus
	calls  int

	// Err, when set, is returned by Check.
	Err error
}

// NewMockAuthProbe creates an unauthenticated MockAuthProbe
func NewMockAuthProbe() *MockAuthProbe {
	return &MockAuthProbe{}
}

// SetAuthenticated marks the probe as an authenticated user.
func (m *MockAuthProbe) SetAuthenticated(userID int64, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = domain.AuthStatus{
		IsAuthenticated: true,
		UserID:          userID,
		Username:        username,
	}
}

// Calls returns how many probe calls were made.
func (m *MockAuthProbe) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Check returns the configured status.
func (m *MockAuthProbe) Check(ctx context.Context) (*domain.AuthStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	status := m.status
	return &status, nil
}

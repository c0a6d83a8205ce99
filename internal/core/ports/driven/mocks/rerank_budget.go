package mocks

import (
	"context"
	"sync"
)

// MockRerankBudget is a scriptable RerankBudget for testing.
type MockRerankBudget struct {
	mu    sync.Mutex
	calls int

	// Allowed is returned by Allow; Err takes precedence when set
	Allowed bool
	Err     error
}

// NewMockRerankBudget creates a budget that allows everything.
func NewMockRerankBudget() *MockRerankBudget {
	return &MockRerankBudget{Allowed: true}
}

func (m *MockRerankBudget) Allow(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return false, m.Err
	}
	return m.Allowed, nil
}

// CallCount returns how many times Allow was consulted.
func (m *MockRerankBudget) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
)

// MockSearchBackend is a scriptable SearchBackend for testing. SearchFunc
// decides the reply per query; every received query is recorded in order.
type MockSearchBackend struct {
	mu    sync.Mutex
	Calls []domain.BackendQuery

	// SearchFunc handles each query. Nil means zero hits for everything.
	SearchFunc func(ctx context.Context, query domain.BackendQuery) ([]domain.Hit, int, error)

	// HealthErr is returned by HealthCheck
	HealthErr error
}

// NewMockSearchBackend creates a backend that returns zero hits until scripted.
func NewMockSearchBackend() *MockSearchBackend {
	return &MockSearchBackend{}
}

func (m *MockSearchBackend) Search(ctx context.Context, query domain.BackendQuery) ([]domain.Hit, int, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, query)
	fn := m.SearchFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, 0, nil
	}
	return fn(ctx, query)
}

func (m *MockSearchBackend) HealthCheck(_ context.Context) error {
	return m.HealthErr
}

// CallCount returns how many queries the backend has received.
func (m *MockSearchBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// QueryFor returns the recorded query whose first clause targets the given
// field, which is how tests identify individual strategies.
func (m *MockSearchBackend) QueryFor(field string) (domain.BackendQuery, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.Calls {
		if len(q.Clauses) > 0 && q.Clauses[0].Field == field {
			return q, true
		}
	}
	return domain.BackendQuery{}, false
}

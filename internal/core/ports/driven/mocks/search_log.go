package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
)

// MockSearchLogStore records audit entries in memory for testing.
type MockSearchLogStore struct {
	mu      sync.Mutex
	Entries []domain.SearchLogEntry

	// Err is returned by Record when set
	Err error
}

// NewMockSearchLogStore creates an empty in-memory store.
func NewMockSearchLogStore() *MockSearchLogStore {
	return &MockSearchLogStore{}
}

func (m *MockSearchLogStore) Record(_ context.Context, entry domain.SearchLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, entry)
	return nil
}

// Recorded returns a copy of the stored entries.
func (m *MockSearchLogStore) Recorded() []domain.SearchLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SearchLogEntry, len(m.Entries))
	copy(out, m.Entries)
	return out
}

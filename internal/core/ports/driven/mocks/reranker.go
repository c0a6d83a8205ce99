package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
)

// MockReranker is a scriptable Reranker for testing.
type MockReranker struct {
	mu    sync.Mutex
	Calls []domain.RerankRequest

	// RerankFunc handles each request. Nil echoes the input order with a
	// flat relevance score.
	RerankFunc func(ctx context.Context, req domain.RerankRequest) (*domain.RerankResponse, error)

	closed bool
}

// NewMockReranker creates a re-ranker that echoes input order until scripted.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

func (m *MockReranker) Rerank(ctx context.Context, req domain.RerankRequest) (*domain.RerankResponse, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	fn := m.RerankFunc
	m.mu.Unlock()

	if fn == nil {
		results := make([]domain.RerankedResult, len(req.Candidates))
		for i, c := range req.Candidates {
			results[i] = domain.RerankedResult{Index: c.Index, RelevanceScore: 50}
		}
		return &domain.RerankResponse{Results: results}, nil
	}
	return fn(ctx, req)
}

func (m *MockReranker) Model() string { return "mock-reranker" }

func (m *MockReranker) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockReranker) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// CallCount returns how many re-rank requests were received.
func (m *MockReranker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

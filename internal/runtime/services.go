package runtime

import (
	"sync"

	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven"
)

// Services holds references to dynamically configurable collaborators.
// The re-ranker can be swapped or removed at runtime without restarting
// in-flight searches. Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	reranker driven.Reranker
}

// NewServices creates a new Services registry.
func NewServices() *Services {
	return &Services{}
}

// Reranker returns the current re-ranker (may be nil, meaning the gate
// falls back to lexical ranking).
func (s *Services) Reranker() driven.Reranker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reranker
}

// SetReranker updates the re-ranker, closing the old one if present.
func (s *Services) SetReranker(r driven.Reranker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reranker != nil {
		_ = s.reranker.Close()
	}
	s.reranker = r
}

// CanRerank reports whether a re-ranker is currently configured.
func (s *Services) CanRerank() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reranker != nil
}

// Close shuts down all held collaborators.
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reranker != nil {
		_ = s.reranker.Close()
		s.reranker = nil
	}
	return nil
}

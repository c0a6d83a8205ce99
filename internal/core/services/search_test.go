package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/skumatch-core/internal/runtime"
)

type searchFixture struct {
	backend  *mocks.MockSearchBackend
	reranker *mocks.MockReranker
	log      *mocks.MockSearchLogStore
	services *runtime.Services
}

func newSearchFixture() *searchFixture {
	f := &searchFixture{
		backend:  mocks.NewMockSearchBackend(),
		reranker: mocks.NewMockReranker(),
		log:      mocks.NewMockSearchLogStore(),
		services: runtime.NewServices(),
	}
	f.services.SetReranker(f.reranker)
	return f
}

func (f *searchFixture) service() *searchService {
	svc := NewSearchService(f.backend, f.services, nil, f.log, DefaultConfig(), slog.Default())
	return svc.(*searchService)
}

// strategyOf identifies the dispatching strategy from the query shape.
func strategyOf(q domain.BackendQuery) domain.Strategy {
	c := q.Clauses[0]
	switch {
	case c.Type == domain.ClauseTerm:
		return domain.StrategyExact
	case c.Field == fieldExact:
		return domain.StrategyNormalized
	case c.Type == domain.ClauseFuzzy:
		return domain.StrategyFuzzy
	case c.Field == fieldNgram:
		return domain.StrategyNgram
	case c.Type == domain.ClauseWildcard:
		return domain.StrategyPartial
	default:
		return domain.StrategyRelaxed
	}
}

func TestSearch_RejectsEmptyQuery(t *testing.T) {
	svc := newSearchFixture().service()

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := svc.Search(context.Background(), q, 10)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Search(%q) error = %v, want ErrInvalidInput", q, err)
		}
	}
}

func TestSearch_RejectsSizeOutOfRange(t *testing.T) {
	svc := newSearchFixture().service()

	for _, size := range []int{0, -1, 101} {
		_, err := svc.Search(context.Background(), "FX-1", size)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Search(size=%d) error = %v, want ErrInvalidInput", size, err)
		}
	}

	// boundary values are accepted
	for _, size := range []int{1, 100} {
		if _, err := svc.Search(context.Background(), "FX-1", size); err != nil {
			t.Errorf("Search(size=%d) error = %v, want nil", size, err)
		}
	}
}

func TestSearch_NoCandidatesIsValidEmpty(t *testing.T) {
	f := newSearchFixture()
	svc := f.service()

	result, err := svc.Search(context.Background(), "存在しない商品", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalHits != 0 || len(result.Results) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if result.UsedRerank {
		t.Error("nothing to re-rank")
	}
	if f.reranker.CallCount() != 0 {
		t.Errorf("reranker called %d times", f.reranker.CallCount())
	}
}

func TestSearch_AllStrategiesFailed(t *testing.T) {
	f := newSearchFixture()
	f.backend.SearchFunc = func(context.Context, domain.BackendQuery) ([]domain.Hit, int, error) {
		return nil, 0, errors.New("connection refused")
	}
	svc := f.service()

	_, err := svc.Search(context.Background(), "FX-1", 10)
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Errorf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestSearch_PartialBackendFailureStillReturns(t *testing.T) {
	f := newSearchFixture()
	f.backend.SearchFunc = func(_ context.Context, q domain.BackendQuery) ([]domain.Hit, int, error) {
		if strategyOf(q) == domain.StrategyNormalized {
			return []domain.Hit{hitFor("1", "FX-1 ヒーター", 30)}, 1, nil
		}
		return nil, 0, errors.New("shard timeout")
	}
	svc := f.service()

	result, err := svc.Search(context.Background(), "FX-1", 10)
	if err != nil {
		t.Fatalf("one surviving strategy must yield a result, got %v", err)
	}
	if result.TotalHits != 1 {
		t.Errorf("TotalHits = %d", result.TotalHits)
	}
}

func TestSearch_AmbiguousFlowAppliesRerank(t *testing.T) {
	f := newSearchFixture()
	f.backend.SearchFunc = func(_ context.Context, q domain.BackendQuery) ([]domain.Hit, int, error) {
		switch strategyOf(q) {
		case domain.StrategyNormalized:
			return []domain.Hit{hitFor("1", "FX-1 ヒーター", 10)}, 1, nil
		case domain.StrategyFuzzy:
			return []domain.Hit{hitFor("1", "FX-1 ヒーター", 5)}, 1, nil
		case domain.StrategyPartial:
			return []domain.Hit{hitFor("2", "FX-10 クーラー", 3)}, 1, nil
		default:
			return nil, 0, nil
		}
	}
	svc := f.service()

	result, err := svc.Search(context.Background(), "FX-1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalHits != 2 {
		t.Errorf("TotalHits = %d, want 2", result.TotalHits)
	}
	if result.Verdict.IsHighConfidence {
		t.Error("top score 10 is under the threshold, expected ambiguous")
	}
	if !result.UsedRerank {
		t.Fatal("ambiguous result must be re-ranked")
	}
	if f.reranker.CallCount() != 1 {
		t.Errorf("reranker called %d times", f.reranker.CallCount())
	}

	// doc 1 matched two strategies and outranks doc 2
	if result.Results[0].ID != "1" {
		t.Errorf("Results[0].ID = %s", result.Results[0].ID)
	}
	if got := result.Results[0].MatchedBy(domain.StrategyNormalized); !got {
		t.Error("expected normalized among matched strategies")
	}

	// echo re-ranker at relevance 50: 50*0.7 + 10*0.3 = 38
	if math.Abs(result.Results[0].Score-38) > 1e-9 {
		t.Errorf("blended Score = %v, want 38", result.Results[0].Score)
	}
	if result.Results[0].OriginalScore != 10 {
		t.Errorf("OriginalScore = %v, want 10", result.Results[0].OriginalScore)
	}
}

func TestSearch_ExactMatchIsConfident(t *testing.T) {
	f := newSearchFixture()
	f.backend.SearchFunc = func(_ context.Context, q domain.BackendQuery) ([]domain.Hit, int, error) {
		if strategyOf(q) == domain.StrategyExact {
			return []domain.Hit{hitFor("1", "FX-1 ヒーター", 42)}, 1, nil
		}
		return nil, 0, nil
	}
	svc := f.service()

	result, err := svc.Search(context.Background(), "FX-1 ヒーター", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.backend.CallCount() != 1 {
		t.Errorf("expected early exit after exact, backend called %d times", f.backend.CallCount())
	}
	if !result.Verdict.IsHighConfidence {
		t.Error("lone exact hit at 42 must be confident")
	}
	if result.UsedRerank || f.reranker.CallCount() != 0 {
		t.Error("confident result must not be re-ranked")
	}
	if result.Results[0].Confidence != 95 {
		t.Errorf("Confidence = %d, want ceiling", result.Results[0].Confidence)
	}
}

func TestSearch_RerankerFailureNeverFailsSearch(t *testing.T) {
	f := newSearchFixture()
	f.backend.SearchFunc = func(_ context.Context, q domain.BackendQuery) ([]domain.Hit, int, error) {
		if strategyOf(q) == domain.StrategyNormalized {
			return []domain.Hit{hitFor("1", "FX-1", 10)}, 1, nil
		}
		return nil, 0, nil
	}
	f.reranker.RerankFunc = func(context.Context, domain.RerankRequest) (*domain.RerankResponse, error) {
		return nil, errors.New("model overloaded")
	}
	svc := f.service()

	result, err := svc.Search(context.Background(), "FX-1", 10)
	if err != nil {
		t.Fatalf("re-ranker failure leaked: %v", err)
	}
	if result.UsedRerank {
		t.Error("failed re-rank reported as used")
	}
	if result.Results[0].Score != 10 {
		t.Errorf("lexical score not preserved: %v", result.Results[0].Score)
	}
}

func TestSearch_RecordsAuditEntry(t *testing.T) {
	f := newSearchFixture()
	f.backend.SearchFunc = func(_ context.Context, q domain.BackendQuery) ([]domain.Hit, int, error) {
		if strategyOf(q) == domain.StrategyExact {
			return []domain.Hit{hitFor("1", "FX-1", 42)}, 1, nil
		}
		return nil, 0, nil
	}
	svc := f.service()

	if _, err := svc.Search(context.Background(), "FX-1", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := f.log.Recorded()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Query != "FX-1" || entries[0].TotalHits != 1 || entries[0].TopScore != 42 {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestSearch_AuditFailureIsSwallowed(t *testing.T) {
	f := newSearchFixture()
	f.log.Err = errors.New("pq: connection reset")
	svc := f.service()

	if _, err := svc.Search(context.Background(), "FX-1", 10); err != nil {
		t.Errorf("audit log failure leaked: %v", err)
	}
}

package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchBackend = (*Backend)(nil)

// Backend implements driven.SearchBackend against an OpenSearch or
// Elasticsearch-compatible cluster over its JSON query DSL.
type Backend struct {
	baseURL    string
	index      string
	username   string
	password   string
	httpClient *http.Client
}

// Config holds the cluster connection configuration.
type Config struct {
	// BaseURL is the cluster endpoint (e.g., http://localhost:9200)
	BaseURL string

	// Index is the catalog index to query
	Index string

	// Username and Password enable basic auth when non-empty
	Username string
	Password string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(baseURL, index string) Config {
	return Config{
		BaseURL: baseURL,
		Index:   index,
		Timeout: 10 * time.Second,
	}
}

// NewBackend creates a new OpenSearch-backed SearchBackend.
func NewBackend(cfg Config) *Backend {
	return &Backend{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		index:    cfg.Index,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Search translates the backend-neutral query into the JSON DSL and executes
// it against the configured index.
func (b *Backend) Search(ctx context.Context, query domain.BackendQuery) ([]domain.Hit, int, error) {
	body, err := json.Marshal(buildRequest(query))
	if err != nil {
		return nil, 0, err
	}

	url := fmt.Sprintf("%s/%s/_search", b.baseURL, b.index)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.username != "" {
		req.SetBasicAuth(b.username, b.password)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("opensearch search failed: %s - %s", resp.Status, string(respBody))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, 0, err
	}

	hits := make([]domain.Hit, 0, len(searchResp.Hits.Hits))
	for _, h := range searchResp.Hits.Hits {
		hits = append(hits, domain.Hit{
			ID:     h.ID,
			Source: h.Source,
			Score:  h.Score,
		})
	}
	return hits, searchResp.Hits.Total.Value, nil
}

// buildRequest renders the neutral clause list as a DSL body. A lone term
// clause stays a bare term query; everything else becomes a bool/should.
func buildRequest(query domain.BackendQuery) map[string]any {
	req := map[string]any{}
	if query.Size > 0 {
		req["size"] = query.Size
	}

	if len(query.Clauses) == 1 && query.Clauses[0].Type == domain.ClauseTerm {
		c := query.Clauses[0]
		req["query"] = map[string]any{
			"term": map[string]any{c.Field: c.Text},
		}
		return req
	}

	should := make([]map[string]any, 0, len(query.Clauses))
	for _, c := range query.Clauses {
		should = append(should, buildClause(c))
	}

	boolQuery := map[string]any{"should": should}
	if query.MinimumShouldMatch > 0 {
		boolQuery["minimum_should_match"] = query.MinimumShouldMatch
	}
	req["query"] = map[string]any{"bool": boolQuery}
	return req
}

func buildClause(c domain.QueryClause) map[string]any {
	switch c.Type {
	case domain.ClauseFuzzy:
		body := map[string]any{"value": c.Text}
		if c.Fuzziness != "" {
			body["fuzziness"] = c.Fuzziness
		}
		if c.Boost > 0 {
			body["boost"] = c.Boost
		}
		return map[string]any{"fuzzy": map[string]any{c.Field: body}}

	case domain.ClauseWildcard:
		body := map[string]any{"value": c.Text}
		if c.Boost > 0 {
			body["boost"] = c.Boost
		}
		return map[string]any{"wildcard": map[string]any{c.Field: body}}

	case domain.ClauseTerm:
		return map[string]any{"term": map[string]any{c.Field: c.Text}}

	default: // match
		body := map[string]any{"query": c.Text}
		if c.Boost > 0 {
			body["boost"] = c.Boost
		}
		if c.Fuzziness != "" {
			body["fuzziness"] = c.Fuzziness
		}
		if c.MinShouldMatch != "" {
			body["minimum_should_match"] = c.MinShouldMatch
		}
		return map[string]any{"match": map[string]any{c.Field: body}}
	}
}

// searchResponse mirrors the hits envelope of the _search API.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string         `json:"_id"`
			Score  float64        `json:"_score"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// HealthCheck verifies the cluster is reachable and not red.
func (b *Backend) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/_cluster/health", b.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if b.username != "" {
		req.SetBasicAuth(b.username, b.password)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("opensearch health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("opensearch unhealthy: %s", resp.Status)
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return err
	}
	if health.Status == "red" {
		return fmt.Errorf("opensearch cluster status is red")
	}
	return nil
}

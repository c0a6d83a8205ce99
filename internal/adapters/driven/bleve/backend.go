// Package bleve provides an embedded SearchBackend for development and tests,
// backed by an in-memory Bleve index seeded from a JSON catalog file. It
// approximates the cluster backend: sub-field addressing collapses onto the
// single analyzed name field, so scoring differs, but the query shapes and
// the pipeline semantics are exercised end to end.
package bleve

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchBackend = (*Backend)(nil)

const nameField = "sku_name"

// Product is one catalog entry in the seed file.
type Product struct {
	ID   string `json:"id"`
	Name string `json:"sku_name"`
}

// Backend implements driven.SearchBackend over an embedded Bleve index.
type Backend struct {
	index bleve.Index
}

// NewBackend creates an empty in-memory backend.
func NewBackend() (*Backend, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(nameField, textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Backend{index: index}, nil
}

// NewBackendFromFile creates a backend seeded from a JSON catalog file
// containing an array of products.
func NewBackendFromFile(path string) (*Backend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	b, err := NewBackend()
	if err != nil {
		return nil, err
	}
	if err := b.IndexProducts(products); err != nil {
		return nil, err
	}
	return b, nil
}

// IndexProducts adds catalog entries to the index.
func (b *Backend) IndexProducts(products []Product) error {
	batch := b.index.NewBatch()
	for _, p := range products {
		if p.ID == "" {
			return fmt.Errorf("product without id: %q", p.Name)
		}
		if err := batch.Index(p.ID, map[string]any{nameField: p.Name}); err != nil {
			return err
		}
	}
	return b.index.Batch(batch)
}

// Search translates the backend-neutral query onto Bleve's query types.
func (b *Backend) Search(_ context.Context, query domain.BackendQuery) ([]domain.Hit, int, error) {
	queries := make([]blevequery.Query, 0, len(query.Clauses))
	for _, c := range query.Clauses {
		queries = append(queries, buildClause(c))
	}

	var q blevequery.Query
	if len(queries) == 1 {
		q = queries[0]
	} else {
		dq := bleve.NewDisjunctionQuery(queries...)
		if query.MinimumShouldMatch > 0 {
			dq.SetMin(float64(query.MinimumShouldMatch))
		}
		q = dq
	}

	req := bleve.NewSearchRequest(q)
	req.Fields = []string{"*"}
	if query.Size > 0 {
		req.Size = query.Size
	}

	results, err := b.index.Search(req)
	if err != nil {
		return nil, 0, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]domain.Hit, 0, len(results.Hits))
	for _, hit := range results.Hits {
		hits = append(hits, domain.Hit{
			ID:     hit.ID,
			Source: hit.Fields,
			Score:  hit.Score,
		})
	}
	return hits, int(results.Total), nil
}

// buildClause maps one neutral clause onto a Bleve query. Sub-field suffixes
// like .keyword or .ngram collapse onto the single analyzed name field.
func buildClause(c domain.QueryClause) blevequery.Query {
	field := baseField(c.Field)

	switch c.Type {
	case domain.ClauseTerm:
		// no untokenized keyword field here; a phrase match is the closest
		q := bleve.NewMatchPhraseQuery(c.Text)
		q.SetField(field)
		return q

	case domain.ClauseFuzzy:
		q := bleve.NewFuzzyQuery(strings.ToLower(c.Text))
		q.SetField(field)
		q.SetFuzziness(2)
		if c.Boost > 0 {
			q.SetBoost(c.Boost)
		}
		return q

	case domain.ClauseWildcard:
		// wildcard terms are not analyzed; lowercase to match indexed tokens
		q := bleve.NewWildcardQuery(strings.ToLower(c.Text))
		q.SetField(field)
		if c.Boost > 0 {
			q.SetBoost(c.Boost)
		}
		return q

	default: // match
		q := bleve.NewMatchQuery(c.Text)
		q.SetField(field)
		if c.Boost > 0 {
			q.SetBoost(c.Boost)
		}
		if c.Fuzziness != "" {
			q.SetFuzziness(1)
		}
		return q
	}
}

func baseField(field string) string {
	if i := strings.IndexByte(field, '.'); i > 0 {
		return field[:i]
	}
	return field
}

// HealthCheck reports whether the index is usable.
func (b *Backend) HealthCheck(_ context.Context) error {
	if _, err := b.index.DocCount(); err != nil {
		return fmt.Errorf("bleve index unavailable: %w", err)
	}
	return nil
}

// Close releases the index.
func (b *Backend) Close() error {
	return b.index.Close()
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "opensearch", cfg.Backend.Kind)
	assert.Equal(t, "skus", cfg.Backend.Index)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 10, cfg.Backend.ResultSize)
	assert.Equal(t, 15, cfg.Backend.RelaxedResultSize)
	assert.Equal(t, 25.0, cfg.Rerank.ConfidenceThreshold)
	assert.Equal(t, 2.0, cfg.Rerank.ScoreGapRatio)
	assert.Equal(t, 0.7, cfg.Rerank.RelevanceWeight)
	assert.Equal(t, 30*time.Second, cfg.Rerank.Timeout)
	assert.False(t, cfg.Rerank.Enabled)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
backend:
  kind: bleve
  products_path: ./products.json
rerank:
  enabled: true
  model: gpt-4o
  budget_per_minute: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "bleve", cfg.Backend.Kind)
	assert.Equal(t, "./products.json", cfg.Backend.ProductsPath)
	assert.True(t, cfg.Rerank.Enabled)
	assert.Equal(t, "gpt-4o", cfg.Rerank.Model)
	assert.Equal(t, 30, cfg.Rerank.BudgetPerMinute)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
backend:
  url: http://file:9200
`)
	t.Setenv("PORT", "7070")
	t.Setenv("OPENSEARCH_URL", "http://env:9200")
	t.Setenv("RERANK_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "http://env:9200", cfg.Backend.URL)
	assert.True(t, cfg.Rerank.Enabled)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "backend:\n  kind: solr\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

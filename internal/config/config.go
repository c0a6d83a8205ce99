// Package config provides configuration loading for the skumatch-core server.
// Configuration comes from an optional YAML file with environment variable
// overrides on top, so container deployments can run file-less.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	Rerank   RerankConfig   `yaml:"rerank"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// BackendConfig selects and tunes the search backend.
type BackendConfig struct {
	// Kind is "opensearch" or "bleve"
	Kind string `yaml:"kind"`

	// URL, Index and credentials apply to the opensearch backend
	URL      string `yaml:"url"`
	Index    string `yaml:"index"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// ProductsPath seeds the embedded bleve backend from a JSON catalog
	ProductsPath string `yaml:"products_path"`

	Timeout           time.Duration `yaml:"timeout"`
	ResultSize        int           `yaml:"result_size"`
	RelaxedResultSize int           `yaml:"relaxed_result_size"`
}

// RerankConfig tunes the semantic re-ranking stage.
type RerankConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`

	Timeout             time.Duration `yaml:"timeout"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold"`
	ScoreGapRatio       float64       `yaml:"score_gap_ratio"`
	RelevanceWeight     float64       `yaml:"relevance_weight"`

	// BudgetPerMinute caps re-rank calls; 0 means unlimited (no Redis needed)
	BudgetPerMinute int `yaml:"budget_per_minute"`
}

// RedisConfig holds the connection for the re-rank budget counter.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// DatabaseConfig holds the connection for the search audit log.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig holds the optional JWT verification secret. Empty disables auth.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides, then defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.Backend.Kind != "opensearch" && cfg.Backend.Kind != "bleve" {
		return nil, fmt.Errorf("unknown backend kind %q", cfg.Backend.Kind)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, "HOST")
	setInt(&cfg.Server.Port, "PORT")

	setString(&cfg.Backend.Kind, "BACKEND_KIND")
	setString(&cfg.Backend.URL, "OPENSEARCH_URL")
	setString(&cfg.Backend.Index, "OPENSEARCH_INDEX")
	setString(&cfg.Backend.Username, "OPENSEARCH_USERNAME")
	setString(&cfg.Backend.Password, "OPENSEARCH_PASSWORD")
	setString(&cfg.Backend.ProductsPath, "PRODUCTS_PATH")

	setBool(&cfg.Rerank.Enabled, "RERANK_ENABLED")
	setString(&cfg.Rerank.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Rerank.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Rerank.Model, "RERANK_MODEL")
	setInt(&cfg.Rerank.BudgetPerMinute, "RERANK_BUDGET_PER_MINUTE")

	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Backend.Kind == "" {
		cfg.Backend.Kind = "opensearch"
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = "http://localhost:9200"
	}
	if cfg.Backend.Index == "" {
		cfg.Backend.Index = "skus"
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 10 * time.Second
	}
	if cfg.Backend.ResultSize <= 0 {
		cfg.Backend.ResultSize = 10
	}
	if cfg.Backend.RelaxedResultSize <= 0 {
		cfg.Backend.RelaxedResultSize = 15
	}
	if cfg.Rerank.Model == "" {
		cfg.Rerank.Model = "gpt-4o-mini"
	}
	if cfg.Rerank.Timeout <= 0 {
		cfg.Rerank.Timeout = 30 * time.Second
	}
	if cfg.Rerank.ConfidenceThreshold <= 0 {
		cfg.Rerank.ConfidenceThreshold = 25.0
	}
	if cfg.Rerank.ScoreGapRatio <= 0 {
		cfg.Rerank.ScoreGapRatio = 2.0
	}
	if cfg.Rerank.RelevanceWeight <= 0 || cfg.Rerank.RelevanceWeight > 1 {
		cfg.Rerank.RelevanceWeight = 0.7
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1" || v == "yes"
	}
}

package main

// @title           SKUMatch Core API
// @version         1.0
// @description     Multi-strategy fuzzy search for Japanese SKU catalogs with confidence-gated semantic re-ranking.

// @contact.name   SKUMatch OSS
// @contact.url    https://github.com/custodia-labs/skumatch-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"log"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/skumatch-core/internal/adapters/driven/ai"
	blevebackend "github.com/custodia-labs/skumatch-core/internal/adapters/driven/bleve"
	"github.com/custodia-labs/skumatch-core/internal/adapters/driven/opensearch"
	"github.com/custodia-labs/skumatch-core/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/skumatch-core/internal/adapters/driven/redis"
	httpadapter "github.com/custodia-labs/skumatch-core/internal/adapters/driving/http"
	"github.com/custodia-labs/skumatch-core/internal/config"
	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven"
	"github.com/custodia-labs/skumatch-core/internal/core/services"
	"github.com/custodia-labs/skumatch-core/internal/runtime"
)

var version = "dev"

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("skumatch-core %s starting (backend=%s)", version, cfg.Backend.Kind)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// ===== Search backend =====
	var backend driven.SearchBackend
	switch cfg.Backend.Kind {
	case "bleve":
		if cfg.Backend.ProductsPath == "" {
			log.Fatal("bleve backend requires a products catalog (PRODUCTS_PATH)")
		}
		b, err := blevebackend.NewBackendFromFile(cfg.Backend.ProductsPath)
		if err != nil {
			log.Fatalf("Failed to build embedded index: %v", err)
		}
		defer b.Close()
		backend = b
		log.Printf("Embedded index loaded from %s", cfg.Backend.ProductsPath)

	default: // opensearch
		backend = opensearch.NewBackend(opensearch.Config{
			BaseURL:  cfg.Backend.URL,
			Index:    cfg.Backend.Index,
			Username: cfg.Backend.Username,
			Password: cfg.Backend.Password,
			Timeout:  cfg.Backend.Timeout,
		})
	}

	if err := backend.HealthCheck(ctx); err != nil {
		log.Printf("Warning: search backend health check failed: %v (search may not work)", err)
	} else {
		log.Println("Search backend connected")
	}

	// ===== Re-ranker (optional, swappable at runtime) =====
	runtimeServices := runtime.NewServices()
	defer runtimeServices.Close()

	if cfg.Rerank.Enabled {
		reranker, err := ai.NewOpenAIReranker(ai.RerankerConfig{
			APIKey:  cfg.Rerank.APIKey,
			BaseURL: cfg.Rerank.BaseURL,
			Model:   cfg.Rerank.Model,
		})
		if err != nil {
			log.Fatalf("Failed to create re-ranker: %v", err)
		}
		runtimeServices.SetReranker(reranker)
		log.Printf("Re-ranker enabled (model=%s)", reranker.Model())
	} else {
		log.Println("Re-ranker disabled, lexical ranking only")
	}

	// ===== Re-rank budget (optional, needs Redis) =====
	var budget driven.RerankBudget
	if cfg.Rerank.BudgetPerMinute > 0 && cfg.Redis.URL != "" {
		opts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := goredis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		budget = redisadapter.NewRerankBudget(redisClient, cfg.Rerank.BudgetPerMinute, time.Minute)
		log.Printf("Re-rank budget: %d calls/minute", cfg.Rerank.BudgetPerMinute)
	}

	// ===== Search audit log (optional, needs PostgreSQL) =====
	var searchLog driven.SearchLogStore
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.Database.URL))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		searchLog = postgres.NewSearchLogStore(db)
		log.Println("Search audit log enabled")
	}

	// ===== Core service =====
	svcCfg := services.DefaultConfig()
	svcCfg.Dispatcher.Timeout = cfg.Backend.Timeout
	svcCfg.Dispatcher.ResultSize = cfg.Backend.ResultSize
	svcCfg.Dispatcher.RelaxedResultSize = cfg.Backend.RelaxedResultSize
	svcCfg.Gate.ConfidenceThreshold = cfg.Rerank.ConfidenceThreshold
	svcCfg.Gate.ScoreGapRatio = cfg.Rerank.ScoreGapRatio
	svcCfg.Gate.Timeout = cfg.Rerank.Timeout
	svcCfg.Gate.RelevanceWeight = cfg.Rerank.RelevanceWeight

	searchService := services.NewSearchService(backend, runtimeServices, budget, searchLog, svcCfg, nil)

	// ===== HTTP server =====
	server := httpadapter.NewServer(httpadapter.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		Version:   version,
		JWTSecret: cfg.Auth.JWTSecret,
	}, searchService, backend, runtimeServices)

	log.Printf("API server starting on :%d", cfg.Server.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

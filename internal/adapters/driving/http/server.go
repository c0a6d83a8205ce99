package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven"
	"github.com/custodia-labs/skumatch-core/internal/core/ports/driving"
	"github.com/custodia-labs/skumatch-core/internal/runtime"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	searchService driving.SearchService
	backend       driven.SearchBackend
	services      *runtime.Services
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// JWTSecret enables bearer-token auth on the search endpoints when
	// non-empty
	JWTSecret string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	searchService driving.SearchService,
	backend driven.SearchBackend,
	services *runtime.Services,
) *Server {
	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		searchService: searchService,
		backend:       backend,
		services:      services,
	}

	handler := NewRecoveryMiddleware().Handler(
		NewRequestIDMiddleware().Handler(s.router))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes(cfg.JWTSecret)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(jwtSecret string) {
	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Metrics (no auth)
	s.router.Handle("GET /metrics", promhttp.Handler())

	// Search endpoints, optionally behind JWT auth
	search := http.HandlerFunc(s.handleSearch)
	searchGet := http.HandlerFunc(s.handleSearchGet)
	if jwtSecret != "" {
		authMiddleware := NewAuthMiddleware(jwtSecret)
		s.router.Handle("POST /api/v1/search", authMiddleware.Authenticate(search))
		s.router.Handle("GET /api/v1/search", authMiddleware.Authenticate(searchGet))
	} else {
		s.router.Handle("POST /api/v1/search", search)
		s.router.Handle("GET /api/v1/search", searchGet)
	}
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
)

const defaultSize = 10

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"query is required"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// searchRequest is the POST search body.
type searchRequest struct {
	Query string `json:"query"`
	Size  int    `json:"size"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns whether the search backend is reachable and whether re-ranking is available
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "Search backend unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"can_rerank": s.services.CanRerank(),
	})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Search endpoints

// handleSearch godoc
// @Summary      Search the catalog
// @Description  Runs the multi-strategy fuzzy search pipeline over the SKU catalog
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      searchRequest  true  "Search query"
// @Success      200      {object}  domain.SearchResult
// @Failure      400      {object}  ErrorResponse  "Invalid query or size"
// @Failure      503      {object}  ErrorResponse  "Search backend unavailable"
// @Router       /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Size == 0 {
		req.Size = defaultSize
	}

	s.runSearch(w, r, req.Query, req.Size)
}

// handleSearchGet godoc
// @Summary      Search the catalog (query string)
// @Description  Same pipeline as POST /search, for quick manual queries
// @Tags         Search
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  true   "Search query"
// @Param        size  query     int     false  "Maximum results (1-100, default 10)"
// @Success      200   {object}  domain.SearchResult
// @Failure      400   {object}  ErrorResponse  "Invalid query or size"
// @Failure      503   {object}  ErrorResponse  "Search backend unavailable"
// @Router       /search [get]
func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	size := defaultSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "size must be an integer")
			return
		}
		size = parsed
	}

	s.runSearch(w, r, query, size)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, query string, size int) {
	result, err := s.searchService.Search(r.Context(), query, size)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrBackendUnavailable):
			writeError(w, http.StatusServiceUnavailable, "search backend unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

type searchRequest struct {
	Query string `json:"query"`
}

// handleStartSearch handles POST /api/search. The pipeline runs in the
// background; the client polls /api/search-status.
func (s *Server) handleStartSearch(w http.ResponseWriter, r *http.Request) {
	if s.searches == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Search is not configured")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.errorResponse(w, http.StatusBadRequest, "Query is required")
		return
	}

	if err := s.searches.Start(req.Query); err != nil {
		s.errorResponse(w, http.StatusConflict, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"message": "Search started",
	})
}

// handleSearchStatus handles GET /api/search-status.
func (s *Server) handleSearchStatus(w http.ResponseWriter, _ *http.Request) {
	if s.searches == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Search is not configured")
		return
	}
	s.jsonResponse(w, http.StatusOK, s.searches.Status())
}

// handleSearchHistory handles GET /api/search-history.
func (s *Server) handleSearchHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	records, err := s.store.ListSearchHistory(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list search history")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"history": records,
		"count":   len(records),
	})
}

// handleResetHistory handles POST /api/reset-history. Clears search history
// and the considered-companies ledger so past names can surface again.
func (s *Server) handleResetHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ResetHistory(r.Context()); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to reset history")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "Search history reset",
	})
}

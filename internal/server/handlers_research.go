package server

import (
	"encoding/json"
	"net/http"
)

type researchRequest struct {
	PartnerID   int64  `json:"partner_id"`
	PartnerName string `json:"partner_name"`
	Industry    string `json:"industry"`
}

// handleGenerateResearch handles POST /api/generate-partner-research.
// Returns the stored report when one exists, generating it otherwise.
func (s *Server) handleGenerateResearch(w http.ResponseWriter, r *http.Request) {
	if s.research == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Research generation is not configured")
		return
	}

	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PartnerID <= 0 {
		s.errorResponse(w, http.StatusBadRequest, "partner_id is required")
		return
	}

	report, err := s.research.Generate(r.Context(), req.PartnerID, req.PartnerName, req.Industry)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to generate research")
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

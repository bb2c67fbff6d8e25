package server

import (
	"net/http"
	"strconv"

	"github.com/dura-hq/partner-research/internal/coresignal"
)

// handleListPartners handles GET /api/partners with limit/offset paging.
func (s *Server) handleListPartners(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit > 200 {
		limit = 200
	}
	offset := queryInt(r, "offset", 0)

	partners, err := s.store.ListPartners(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list partners")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"partners": partners,
		"count":    len(partners),
	})
}

// handleGetPartner handles GET /api/partners/{id}.
func (s *Server) handleGetPartner(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid partner ID")
		return
	}

	partner, err := s.store.GetPartnerByID(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get partner")
		return
	}
	if partner == nil {
		s.errorResponse(w, http.StatusNotFound, "Partner not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, partner)
}

// handleTopPartners handles GET /api/top-partners, highest score first.
func (s *Server) handleTopPartners(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	if limit > 100 {
		limit = 100
	}

	partners, err := s.store.TopPartners(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list top partners")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"partners": partners,
		"count":    len(partners),
	})
}

// handleGetCompanyCache handles GET /api/company-cache?name=.
func (s *Server) handleGetCompanyCache(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing name parameter")
		return
	}

	cached, err := s.store.GetCompanyCache(r.Context(), name)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get company cache")
		return
	}
	if cached == nil {
		s.errorResponse(w, http.StatusNotFound, "Company not cached")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"company_name": cached.CompanyName,
		"data":         cached.Data,
		"last_updated": cached.LastUpdated,
		"is_real_data": coresignal.LooksAuthentic(cached.Data),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dura-hq/partner-research/internal/enrich"
)

var webhookValidator = validator.New()

// enrichWebhookRequest is the trigger payload sent by the sheet webhook.
// The provider key travels in the body so the server never holds per-tenant
// credentials.
type enrichWebhookRequest struct {
	Action      string `json:"action" validate:"required,eq=enrich_partner"`
	PartnerID   int64  `json:"partner_id" validate:"required,gt=0"`
	CompanyName string `json:"company_name" validate:"required"`
	APIKey      string `json:"api_key" validate:"required"`
}

// handleEnrichWebhook handles POST /webhook/enrich. The caller is a
// spreadsheet script that treats any non-200 as a retryable transport
// error, so every outcome is serialized as a 200 with a success flag.
func (s *Server) handleEnrichWebhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[webhook] panic in enrich handler: %v", rec)
			s.jsonResponse(w, http.StatusOK, enrich.Result{
				Success: false,
				Message: "Internal error processing enrichment",
			})
		}
	}()

	var req enrichWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonResponse(w, http.StatusOK, enrich.Result{
			Success: false,
			Message: "Invalid request data",
		})
		return
	}
	if err := webhookValidator.Struct(req); err != nil {
		s.jsonResponse(w, http.StatusOK, enrich.Result{
			Success: false,
			Message: "Invalid request data",
		})
		return
	}

	result := s.enricher.Enrich(r.Context(), req.PartnerID, req.CompanyName, req.APIKey)
	s.jsonResponse(w, http.StatusOK, result)
}

// partnerEvent is the row-change payload posted by the database trigger.
type partnerEvent struct {
	Type      string           `json:"type"`
	Record    *partnerEventRow `json:"record"`
	OldRecord *partnerEventRow `json:"old_record"`
}

type partnerEventRow struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	NeedsEnrichment bool   `json:"needs_enrichment"`
}

// handlePartnerEvent handles POST /hooks/partner-event. Unlike the sheet
// webhook this caller understands status codes, so failures map to them.
func (s *Server) handlePartnerEvent(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[webhook] panic in partner-event handler: %v", rec)
			s.jsonResponse(w, http.StatusInternalServerError, enrich.Result{
				Success: false,
				Message: "Internal error processing enrichment",
			})
		}
	}()

	var event partnerEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil || event.Record == nil {
		s.jsonResponse(w, http.StatusBadRequest, enrich.Result{
			Success: false,
			Message: "Invalid request data",
		})
		return
	}

	if !event.Record.NeedsEnrichment {
		s.jsonResponse(w, http.StatusOK, enrich.Result{
			Success: true,
			Message: "No enrichment needed",
		})
		return
	}

	result := s.enricher.Enrich(r.Context(), event.Record.ID, event.Record.Name, s.apiKey)
	s.jsonResponse(w, eventStatus(result), result)
}

// eventStatus maps an enrichment outcome to the row-event status code.
func eventStatus(result enrich.Result) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.Kind {
	case enrich.FailureInvalidInput:
		return http.StatusBadRequest
	case enrich.FailureFetch:
		if result.NotFound {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

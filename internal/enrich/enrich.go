// Package enrich implements the partner-enrichment workflow: cache lookup,
// conditional provider fetch, cache write, and a partial partner-record
// update. Both webhook adapters and the CLI call through this package.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/dura-hq/partner-research/internal/coresignal"
	"github.com/dura-hq/partner-research/internal/db"
)

// CacheStore is the slice of the database layer the workflow reads and
// writes cached provider payloads through.
type CacheStore interface {
	GetCompanyCache(ctx context.Context, companyName string) (*db.CompanyCache, error)
	UpsertCompanyCache(ctx context.Context, companyName string, data json.RawMessage) error
}

// PartnerStore applies partial updates to partner records.
type PartnerStore interface {
	ApplyEnrichment(ctx context.Context, partnerID int64, update *db.EnrichmentUpdate) error
}

// CompanyFetcher fetches provider data for a company name.
type CompanyFetcher interface {
	FetchCompanyData(ctx context.Context, apiKey, companyName string) (*coresignal.CompanyData, error)
}

// Result is the structured outcome of one enrichment attempt.
// Failures are values, not errors; adapters serialize them directly.
type Result struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Company   string      `json:"company,omitempty"`
	PartnerID int64       `json:"id,omitempty"`
	Kind      FailureKind `json:"-"`
	FromCache bool        `json:"-"`
	NotFound  bool        `json:"-"`
}

// Enricher orchestrates the enrichment workflow. One invocation handles
// exactly one company and holds no state across invocations.
type Enricher struct {
	cache    CacheStore
	partners PartnerStore
	fetcher  CompanyFetcher
	cacheTTL time.Duration
}

// New creates an Enricher. A non-positive cacheTTL falls back to the
// 7-day default.
func New(cache CacheStore, partners PartnerStore, fetcher CompanyFetcher, cacheTTL time.Duration) *Enricher {
	if cacheTTL <= 0 {
		cacheTTL = db.DefaultCacheTTL
	}
	return &Enricher{
		cache:    cache,
		partners: partners,
		fetcher:  fetcher,
		cacheTTL: cacheTTL,
	}
}

// Enrich runs the workflow for one partner. It never returns an error:
// every failure mode is folded into the Result so adapters can serialize
// it with a 200 and a success flag.
func (e *Enricher) Enrich(ctx context.Context, partnerID int64, companyName, apiKey string) Result {
	if companyName == "" {
		return Result{
			Message: "Invalid request data",
			Kind:    FailureInvalidInput,
		}
	}

	data, fromCache := e.lookupCache(ctx, companyName)

	if data == nil {
		fetched, err := e.fetcher.FetchCompanyData(ctx, apiKey, companyName)
		if err != nil {
			if errors.Is(err, coresignal.ErrNotFound) {
				log.Printf("[enrich] no provider results for %q", companyName)
				return Result{
					Message:  "Failed to fetch company data",
					Kind:     FailureFetch,
					NotFound: true,
				}
			}
			log.Printf("[enrich] provider fetch failed for %q: %v", companyName, err)
			return Result{
				Message: "Failed to fetch company data",
				Kind:    FailureFetch,
			}
		}
		data = fetched

		// A cache-write failure must not block the enrichment; the
		// fetched payload is still in hand.
		if err := e.cache.UpsertCompanyCache(ctx, companyName, data.Raw); err != nil {
			log.Printf("[enrich] failed to cache data for %q: %v", companyName, err)
		}
	}

	update := BuildUpdate(data)
	if err := e.partners.ApplyEnrichment(ctx, partnerID, update); err != nil {
		log.Printf("[enrich] failed to update partner %d: %v", partnerID, err)
		return Result{
			Message: "Error updating potential partner: " + err.Error(),
			Kind:    FailureUpdate,
		}
	}

	log.Printf("[enrich] enriched partner %d (%s, cached=%v)", partnerID, companyName, fromCache)
	return Result{
		Success:   true,
		Message:   "Successfully enriched potential partner",
		Company:   companyName,
		PartnerID: partnerID,
		FromCache: fromCache,
	}
}

// lookupCache returns a usable cached payload, or nil when the cache has
// nothing fresh. Cache read errors and undecodable rows degrade to a fresh
// fetch rather than failing the workflow.
func (e *Enricher) lookupCache(ctx context.Context, companyName string) (*coresignal.CompanyData, bool) {
	cached, err := e.cache.GetCompanyCache(ctx, companyName)
	if err != nil {
		log.Printf("[enrich] cache lookup failed for %q: %v", companyName, err)
		return nil, false
	}
	if cached == nil || !cached.Fresh(e.cacheTTL) {
		return nil, false
	}

	data, err := coresignal.ParseCompanyData(cached.Data)
	if err != nil {
		log.Printf("[enrich] undecodable cache row for %q: %v", companyName, err)
		return nil, false
	}
	return data, true
}

// BuildUpdate maps a provider payload onto a partial partner update.
// A field enters the update set only when the payload carries a non-empty
// value for it; absent values never overwrite existing partner data.
func BuildUpdate(data *coresignal.CompanyData) *db.EnrichmentUpdate {
	update := &db.EnrichmentUpdate{}

	if data.Website != "" {
		update.Website = &data.Website
	}
	if data.Industry != "" {
		update.Industry = &data.Industry
	}
	if data.Description != "" {
		update.Description = &data.Description
	}
	if data.HQLocation != "" {
		update.HQLocation = &data.HQLocation
	}
	if data.EmployeeCount > 0 {
		update.EmployeeCount = &data.EmployeeCount
	}
	if data.RevenueAnnualRange != "" {
		update.RevenueAnnualRange = &data.RevenueAnnualRange
	}
	if data.FoundedYear > 0 {
		update.FoundedYear = &data.FoundedYear
	}
	if nonNullJSON(data.SocialMedia) {
		update.SocialMedia = data.SocialMedia
	}
	if nonNullJSON(data.Leadership) {
		update.Leadership = data.Leadership
	}
	if nonNullJSON(data.Products) {
		update.Products = data.Products
	}
	if nonNullJSON(data.Competitors) {
		update.Competitors = data.Competitors
	}

	return update
}

// nonNullJSON reports whether a raw JSON value carries content
// (not absent, not null, not an empty object/array).
func nonNullJSON(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", "{}", "[]":
		return false
	}
	return true
}

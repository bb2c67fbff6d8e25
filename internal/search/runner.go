package search

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dura-hq/partner-research/internal/analysis"
	"github.com/dura-hq/partner-research/internal/db"
)

// MaxCompaniesPerSearch caps how many extracted companies get analyzed in
// one run.
const MaxCompaniesPerSearch = 40

// runTimeout bounds a whole background search run.
const runTimeout = 10 * time.Minute

// Store is the slice of the database layer the search pipeline uses.
type Store interface {
	CreatePartner(ctx context.Context, p *db.PotentialPartner) (int64, error)
	ListPartnerNames(ctx context.Context) ([]string, error)
	ListConsideredCompanies(ctx context.Context) ([]string, error)
	AddConsideredCompany(ctx context.Context, name string) error
	RecordSearch(ctx context.Context, query, searchType string, resultsCount int) error
}

// FoundPartner is one pipeline result surfaced through the status endpoint.
type FoundPartner struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// Runner executes industry searches in the background. One runner per
// process; Start rejects overlapping runs.
type Runner struct {
	tracker   *Tracker
	store     Store
	discovery *ExaClient
	gen       analysis.Generator
	exaAPIKey string
}

// NewRunner wires the search pipeline.
func NewRunner(tracker *Tracker, store Store, discovery *ExaClient, gen analysis.Generator, exaAPIKey string) *Runner {
	return &Runner{
		tracker:   tracker,
		store:     store,
		discovery: discovery,
		gen:       gen,
		exaAPIKey: exaAPIKey,
	}
}

// Tracker exposes the status tracker for the polling endpoint.
func (r *Runner) Tracker() *Tracker {
	return r.tracker
}

// Start validates the query and launches the pipeline in a goroutine.
func (r *Runner) Start(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("search query cannot be empty")
	}
	if r.exaAPIKey == "" {
		return fmt.Errorf("search API key not configured")
	}
	if r.tracker.Running() {
		return fmt.Errorf("a search is already in progress")
	}

	r.tracker.Update(StepStarting, "Initiating search process", 5)
	go r.run(query)
	return nil
}

// run drives the pipeline: discovery, name extraction, filtering, analysis,
// persistence. Every failure lands in the tracker, never in a panic.
func (r *Runner) run(query string) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[search] panic in search run: %v", rec)
			r.tracker.Fail(fmt.Sprintf("Error in search: %v", rec))
		}
	}()

	r.tracker.Update(StepSearching, fmt.Sprintf("Searching for companies related to: %s", query), 10)
	results, err := r.discovery.Search(ctx, r.exaAPIKey, query+" companies", 20)
	if err != nil {
		r.tracker.Fail(fmt.Sprintf("Error in search: %v", err))
		return
	}

	r.tracker.Update(StepExtracting, "Extracting company names from search results", 30)
	names, err := ExtractCompanyNames(ctx, r.gen, results, query)
	if err != nil {
		r.tracker.Fail(fmt.Sprintf("Error extracting companies: %v", err))
		return
	}

	candidates, err := r.filterCandidates(ctx, names)
	if err != nil {
		r.tracker.Fail(fmt.Sprintf("Error filtering companies: %v", err))
		return
	}
	if len(candidates) > MaxCompaniesPerSearch {
		candidates = candidates[:MaxCompaniesPerSearch]
	}
	if len(candidates) == 0 {
		r.tracker.Fail("No new companies found in this industry. Try a different industry.")
		return
	}

	r.tracker.Update(StepAnalyzing,
		fmt.Sprintf("Selected %d new companies for analysis", len(candidates)), 40)

	partners := r.analyzeAndSave(ctx, query, candidates)

	if err := r.store.RecordSearch(ctx, query, db.SearchTypeIndustry, len(partners)); err != nil {
		log.Printf("[search] failed to record search history: %v", err)
	}

	r.tracker.Complete(
		fmt.Sprintf("Found %d potential partners for: %s", len(partners), query),
		partners,
	)
}

// filterCandidates drops current partners and previously considered names,
// then marks the survivors considered.
func (r *Runner) filterCandidates(ctx context.Context, names []string) ([]string, error) {
	current, err := r.store.ListPartnerNames(ctx)
	if err != nil {
		return nil, err
	}
	considered, err := r.store.ListConsideredCompanies(ctx)
	if err != nil {
		return nil, err
	}

	// Keys are normalized the same way the considered-companies ledger
	// stores them, so "Acme Co." and "acme co" count as one company.
	skip := map[string]bool{}
	for _, name := range current {
		skip[db.NormalizeName(name)] = true
	}
	for _, name := range considered {
		skip[db.NormalizeName(name)] = true
	}

	var candidates []string
	for _, name := range names {
		if skip[db.NormalizeName(name)] {
			continue
		}
		candidates = append(candidates, name)
		if err := r.store.AddConsideredCompany(ctx, name); err != nil {
			log.Printf("[search] failed to mark %q considered: %v", name, err)
		}
	}
	return candidates, nil
}

// analyzeAndSave scores each candidate and persists the survivors.
// A failed analysis skips the company, never the whole run.
func (r *Runner) analyzeAndSave(ctx context.Context, query string, candidates []string) []FoundPartner {
	var partners []FoundPartner

	for i, name := range candidates {
		progress := 40 + (i+1)*50/len(candidates)
		r.tracker.Update(StepAnalyzing,
			fmt.Sprintf("Analyzing %s (%d of %d)", name, i+1, len(candidates)), progress)

		result, _, err := analysis.Analyze(ctx, r.gen, name, query)
		if err != nil {
			log.Printf("[search] skipping %q: %v", name, err)
			continue
		}

		partner := &db.PotentialPartner{
			Name:        name,
			Industry:    &query,
			Description: &result.Description,
			Score:       &result.Score,
		}
		id, err := r.store.CreatePartner(ctx, partner)
		if err != nil {
			log.Printf("[search] failed to save partner %q: %v", name, err)
			continue
		}

		partners = append(partners, FoundPartner{
			ID:          id,
			Name:        name,
			Score:       result.Score,
			Description: result.Description,
		})
	}
	return partners
}

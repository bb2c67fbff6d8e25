package db

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PotentialPartner represents a row in the potential_partners table.
// The id is owned by the wider partner-research schema (bigint in Postgres).
type PotentialPartner struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Website            *string         `json:"website,omitempty"`
	Industry           *string         `json:"industry,omitempty"`
	Description        *string         `json:"description,omitempty"`
	HQLocation         *string         `json:"hq_location,omitempty"`
	EmployeeCount      *int            `json:"employee_count,omitempty"`
	RevenueAnnualRange *string         `json:"revenue_annual_range,omitempty"`
	FoundedYear        *int            `json:"founded_year,omitempty"`
	SocialMedia        json.RawMessage `json:"social_media,omitempty"`
	Leadership         json.RawMessage `json:"leadership,omitempty"`
	Products           json.RawMessage `json:"products,omitempty"`
	Competitors        json.RawMessage `json:"competitors,omitempty"`
	Score              *float64        `json:"score,omitempty"`
	NeedsEnrichment    bool            `json:"needs_enrichment"`
	Enriched           bool            `json:"enriched"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	LastUpdatedAt      *time.Time      `json:"last_updated_at,omitempty"`
}

// CompanyCache represents a row in the company_data_cache table.
// One row per company name; the payload is stored verbatim as returned
// by the provider.
type CompanyCache struct {
	CompanyName string          `json:"company_name"`
	Data        json.RawMessage `json:"data"`
	LastUpdated time.Time       `json:"last_updated"`
}

// DefaultCacheTTL is how long cached provider data is considered usable.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Fresh reports whether the cached payload is still usable under ttl.
func (c *CompanyCache) Fresh(ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return time.Since(c.LastUpdated) < ttl
}

// SearchRecord represents a row in the search_history table.
type SearchRecord struct {
	ID           uuid.UUID `json:"id"`
	Query        string    `json:"query"`
	SearchType   string    `json:"type"`
	ResultsCount int       `json:"results_count"`
	CreatedAt    time.Time `json:"timestamp"`
}

// SearchType constants for search history rows
const (
	SearchTypeIndustry = "industry"
	SearchTypeAI       = "ai"
)

// PartnerResearch represents a row in the partner_research table.
type PartnerResearch struct {
	ID          uuid.UUID       `json:"id"`
	PartnerID   int64           `json:"partner_id"`
	PartnerName string          `json:"partner_name"`
	Research    json.RawMessage `json:"research"`
	Source      string          `json:"source"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// User represents an API user account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeName produces the canonical lookup form of a company name:
// lowercased, punctuation stripped, single-spaced.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(b.String(), " "))
}

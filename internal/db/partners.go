package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetPartnerByID retrieves a potential partner by its id
func (db *DB) GetPartnerByID(ctx context.Context, id int64) (*PotentialPartner, error) {
	var p PotentialPartner
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, website, industry, description, hq_location, employee_count,
		        revenue_annual_range, founded_year, social_media, leadership, products,
		        competitors, score, needs_enrichment, enriched, created_at, updated_at, last_updated_at
		 FROM potential_partners WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Website, &p.Industry, &p.Description, &p.HQLocation, &p.EmployeeCount,
		&p.RevenueAnnualRange, &p.FoundedYear, &p.SocialMedia, &p.Leadership, &p.Products,
		&p.Competitors, &p.Score, &p.NeedsEnrichment, &p.Enriched, &p.CreatedAt, &p.UpdatedAt, &p.LastUpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return &p, nil
}

// ListPartners retrieves potential partners ordered by score
func (db *DB) ListPartners(ctx context.Context, limit, offset int) ([]PotentialPartner, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, website, industry, description, hq_location, employee_count,
		        revenue_annual_range, founded_year, social_media, leadership, products,
		        competitors, score, needs_enrichment, enriched, created_at, updated_at, last_updated_at
		 FROM potential_partners ORDER BY score DESC NULLS LAST, created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	return scanPartners(rows)
}

// ListPartnerNames retrieves the names of all current partners
func (db *DB) ListPartnerNames(ctx context.Context) ([]string, error) {
	rows, err := db.pool.Query(ctx, `SELECT name FROM potential_partners`)
	if err != nil {
		return nil, fmt.Errorf("failed to list partner names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan partner name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TopPartners retrieves the highest-scored partners
func (db *DB) TopPartners(ctx context.Context, limit int) ([]PotentialPartner, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, website, industry, description, hq_location, employee_count,
		        revenue_annual_range, founded_year, social_media, leadership, products,
		        competitors, score, needs_enrichment, enriched, created_at, updated_at, last_updated_at
		 FROM potential_partners WHERE score IS NOT NULL
		 ORDER BY score DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list top partners: %w", err)
	}
	defer rows.Close()

	return scanPartners(rows)
}

func scanPartners(rows pgx.Rows) ([]PotentialPartner, error) {
	var partners []PotentialPartner
	for rows.Next() {
		var p PotentialPartner
		if err := rows.Scan(&p.ID, &p.Name, &p.Website, &p.Industry, &p.Description, &p.HQLocation,
			&p.EmployeeCount, &p.RevenueAnnualRange, &p.FoundedYear, &p.SocialMedia, &p.Leadership,
			&p.Products, &p.Competitors, &p.Score, &p.NeedsEnrichment, &p.Enriched,
			&p.CreatedAt, &p.UpdatedAt, &p.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, p)
	}
	return partners, nil
}

// CreatePartner inserts a newly discovered partner and returns its id.
// Discovered partners start flagged for enrichment.
func (db *DB) CreatePartner(ctx context.Context, p *PotentialPartner) (int64, error) {
	var id int64
	err := db.pool.QueryRow(ctx,
		`INSERT INTO potential_partners (name, website, industry, description, score, needs_enrichment, enriched)
		 VALUES ($1, $2, $3, $4, $5, TRUE, FALSE)
		 RETURNING id`,
		p.Name, p.Website, p.Industry, p.Description, p.Score,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create partner: %w", err)
	}
	return id, nil
}

// EnrichmentUpdate holds the field values to apply to a partner record.
// Only non-nil fields are written; absent provider values never overwrite
// existing data.
type EnrichmentUpdate struct {
	Website            *string
	Industry           *string
	Description        *string
	HQLocation         *string
	EmployeeCount      *int
	RevenueAnnualRange *string
	FoundedYear        *int
	SocialMedia        json.RawMessage
	Leadership         json.RawMessage
	Products           json.RawMessage
	Competitors        json.RawMessage
}

// setClauses returns the SET fragments and arguments for the optional
// fields, numbering placeholders from startArg.
func (u *EnrichmentUpdate) setClauses(startArg int) ([]string, []any) {
	var clauses []string
	var args []any
	add := func(column string, value any) {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, startArg+len(args)))
		args = append(args, value)
	}

	if u.Website != nil {
		add("website", *u.Website)
	}
	if u.Industry != nil {
		add("industry", *u.Industry)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.HQLocation != nil {
		add("hq_location", *u.HQLocation)
	}
	if u.EmployeeCount != nil {
		add("employee_count", *u.EmployeeCount)
	}
	if u.RevenueAnnualRange != nil {
		add("revenue_annual_range", *u.RevenueAnnualRange)
	}
	if u.FoundedYear != nil {
		add("founded_year", *u.FoundedYear)
	}
	if len(u.SocialMedia) > 0 {
		add("social_media", u.SocialMedia)
	}
	if len(u.Leadership) > 0 {
		add("leadership", u.Leadership)
	}
	if len(u.Products) > 0 {
		add("products", u.Products)
	}
	if len(u.Competitors) > 0 {
		add("competitors", u.Competitors)
	}
	return clauses, args
}

// ApplyEnrichment applies a partial update to a partner record and marks it
// enriched. The enriched/needs_enrichment flip happens in the same statement,
// so enriched = true always implies needs_enrichment = false.
func (db *DB) ApplyEnrichment(ctx context.Context, partnerID int64, update *EnrichmentUpdate) error {
	clauses, args := update.setClauses(2)
	clauses = append(clauses,
		"updated_at = NOW()",
		"last_updated_at = CURRENT_DATE",
		"needs_enrichment = FALSE",
		"enriched = TRUE",
	)

	query := "UPDATE potential_partners SET "
	for i, c := range clauses {
		if i > 0 {
			query += ", "
		}
		query += c
	}
	query += " WHERE id = $1"

	result, err := db.pool.Exec(ctx, query, append([]any{partnerID}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update partner %d: %w", partnerID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("partner not found: %d", partnerID)
	}
	return nil
}

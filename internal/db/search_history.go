package db

import (
	"context"
	"fmt"
)

// RecordSearch appends a row to the search history
func (db *DB) RecordSearch(ctx context.Context, query, searchType string, resultsCount int) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO search_history (query, search_type, results_count)
		 VALUES ($1, $2, $3)`,
		query, searchType, resultsCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// ListSearchHistory retrieves recent searches, newest first
func (db *DB) ListSearchHistory(ctx context.Context, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, query, search_type, results_count, created_at
		 FROM search_history ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list search history: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var r SearchRecord
		if err := rows.Scan(&r.ID, &r.Query, &r.SearchType, &r.ResultsCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

// AddConsideredCompany marks a company name as previously considered so later
// searches skip it. Names are stored in normalized form, so "Acme Co." and
// "acme co" collapse to one row; duplicates are absorbed by the unique
// constraint.
func (db *DB) AddConsideredCompany(ctx context.Context, name string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO considered_companies (company_name)
		 VALUES ($1)
		 ON CONFLICT (company_name) DO NOTHING`,
		NormalizeName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to add considered company: %w", err)
	}
	return nil
}

// ListConsideredCompanies returns all previously considered company names,
// in their normalized stored form
func (db *DB) ListConsideredCompanies(ctx context.Context) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT company_name FROM considered_companies`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list considered companies: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan considered company: %w", err)
		}
		names = append(names, name)
	}
	return names, nil
}

// ResetHistory clears the search history and the considered-companies set
func (db *DB) ResetHistory(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM search_history`); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	if _, err := db.pool.Exec(ctx, `DELETE FROM considered_companies`); err != nil {
		return fmt.Errorf("failed to clear considered companies: %w", err)
	}
	return nil
}

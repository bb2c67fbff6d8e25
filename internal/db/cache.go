package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetCompanyCache retrieves the cached provider payload for a company name.
// Returns nil when no row exists; freshness is the caller's concern.
func (db *DB) GetCompanyCache(ctx context.Context, companyName string) (*CompanyCache, error) {
	var c CompanyCache
	err := db.pool.QueryRow(ctx,
		`SELECT company_name, data, last_updated
		 FROM company_data_cache WHERE company_name = $1`,
		companyName,
	).Scan(&c.CompanyName, &c.Data, &c.LastUpdated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company cache: %w", err)
	}
	return &c, nil
}

// UpsertCompanyCache stores a provider payload for a company name.
// At most one row per company; an existing row is superseded in place.
func (db *DB) UpsertCompanyCache(ctx context.Context, companyName string, data json.RawMessage) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO company_data_cache (company_name, data, last_updated)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (company_name) DO UPDATE SET data = $2, last_updated = NOW()`,
		companyName, data,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert company cache: %w", err)
	}
	return nil
}

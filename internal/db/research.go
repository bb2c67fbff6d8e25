package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetPartnerResearch retrieves stored research for a partner
func (db *DB) GetPartnerResearch(ctx context.Context, partnerID int64) (*PartnerResearch, error) {
	var r PartnerResearch
	err := db.pool.QueryRow(ctx,
		`SELECT id, partner_id, partner_name, research, source, created_at, updated_at
		 FROM partner_research WHERE partner_id = $1`,
		partnerID,
	).Scan(&r.ID, &r.PartnerID, &r.PartnerName, &r.Research, &r.Source, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get partner research: %w", err)
	}
	return &r, nil
}

// SavePartnerResearch stores research for a partner, replacing any prior report
func (db *DB) SavePartnerResearch(ctx context.Context, partnerID int64, partnerName, source string, research json.RawMessage) (*PartnerResearch, error) {
	var r PartnerResearch
	err := db.pool.QueryRow(ctx,
		`INSERT INTO partner_research (partner_id, partner_name, research, source)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (partner_id) DO UPDATE SET
		     partner_name = $2, research = $3, source = $4, updated_at = NOW()
		 RETURNING id, partner_id, partner_name, research, source, created_at, updated_at`,
		partnerID, partnerName, research, source,
	).Scan(&r.ID, &r.PartnerID, &r.PartnerName, &r.Research, &r.Source, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save partner research: %w", err)
	}
	return &r, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dura-hq/partner-research/internal/config"
	"github.com/dura-hq/partner-research/internal/coresignal"
	"github.com/dura-hq/partner-research/internal/db"
	"github.com/dura-hq/partner-research/internal/enrich"
)

var (
	enrichPartnerID   int64
	enrichCompanyName string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich one potential partner from the command line",
	Long:  `Run the enrichment workflow for a single partner record, using CORESIGNAL_API_KEY for provider access.`,
	RunE:  runEnrich,
}

func init() {
	enrichCmd.Flags().Int64Var(&enrichPartnerID, "partner-id", 0, "Partner record ID (required)")
	enrichCmd.Flags().StringVar(&enrichCompanyName, "company", "", "Company name (required)")
	_ = enrichCmd.MarkFlagRequired("partner-id")
	_ = enrichCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.CoresignalAPIKey == "" {
		return fmt.Errorf("CORESIGNAL_API_KEY environment variable is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	fetcher := coresignal.NewClient(&coresignal.Options{BaseURL: cfg.CoresignalBaseURL})
	enricher := enrich.New(database, database, fetcher, cfg.CacheTTL)

	result := enricher.Enrich(ctx, enrichPartnerID, enrichCompanyName, cfg.CoresignalAPIKey)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("enrichment failed: %s", result.Message)
	}
	return nil
}

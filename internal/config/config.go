// Package config provides configuration loading and validation for the
// partner-research service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultCacheTTLDays is how long cached provider payloads stay usable.
const DefaultCacheTTLDays = 7

// Config holds runtime configuration for the API server and CLI.
// All values come from the environment; a .env file is loaded by main
// before this runs.
type Config struct {
	Port        int
	DatabaseURL string

	// Provider credentials. The Coresignal key is only a fallback for CLI
	// runs; webhook requests carry their own key in the request body.
	CoresignalAPIKey  string
	CoresignalBaseURL string
	GeminiAPIKey      string
	ExaAPIKey         string

	CacheTTL time.Duration
}

// Load reads configuration from environment variables.
// DATABASE_URL is required; everything else has a default or is optional.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              8080,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		CoresignalAPIKey:  os.Getenv("CORESIGNAL_API_KEY"),
		CoresignalBaseURL: os.Getenv("CORESIGNAL_BASE_URL"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		ExaAPIKey:         os.Getenv("EXA_API_KEY"),
		CacheTTL:          DefaultCacheTTLDays * 24 * time.Hour,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}

	if ttlStr := os.Getenv("CACHE_TTL_DAYS"); ttlStr != "" {
		days, err := strconv.Atoi(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_TTL_DAYS: %v", err)
		}
		cfg.CacheTTL = time.Duration(days) * 24 * time.Hour
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port out of range: %d", c.Port)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("config error: cache TTL must be positive")
	}
	return nil
}

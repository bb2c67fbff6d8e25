package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one endpoint. A Path ending in "/" matches by prefix.
type Rule struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Trusted         map[string]bool
	Rules           []Rule
}

// DefaultConfig returns the built-in limits for this API.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    300,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Trusted:         map[string]bool{},
		Rules:           defaultRules(),
	}
}

// defaultRules tiers the endpoints: background pipelines are the scarcest,
// enrichment webhooks are bursty but bounded, reads ride the default.
func defaultRules() []Rule {
	return []Rule{
		{Path: "/api/search", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},
		{Path: "/api/generate-partner-research", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/webhook/enrich", Method: "POST", Limit: 120, Window: time.Minute, Burst: 30},
		{Path: "/hooks/", Method: "POST", Limit: 120, Window: time.Minute, Burst: 30},
		{Path: "/api/reset-history", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/auth/", Method: "POST", Limit: 30, Window: time.Minute, Burst: 10},
	}
}

// LoadConfig reads the limiter configuration from the environment.
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if raw := os.Getenv("RATE_LIMIT_ENABLED"); raw != "" {
		if enabled, err := strconv.ParseBool(raw); err == nil {
			cfg.Enabled = enabled
		}
	}
	if raw := os.Getenv("RATE_LIMIT_DEFAULT_LIMIT"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			cfg.DefaultLimit = limit
		}
	}
	if raw := os.Getenv("RATE_LIMIT_TRUSTED_IPS"); raw != "" {
		for _, ip := range strings.Split(raw, ",") {
			if ip = strings.TrimSpace(ip); ip != "" {
				cfg.Trusted[ip] = true
			}
		}
	}
	return cfg
}

// match finds the rule covering the path and method. Health checks are
// never limited; unmatched paths use the default limit.
func (c *Config) match(path, method string) *Rule {
	if path == "/health" && method == "GET" {
		return nil
	}
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Method != method {
			continue
		}
		if r.Path == path {
			return r
		}
		if strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}
	return &Rule{
		Path:   path,
		Method: method,
		Limit:  c.DefaultLimit,
		Window: c.DefaultWindow,
	}
}

package analysis

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/dura-hq/partner-research/internal/schemas"
)

//go:embed schema.json
var analysisSchema string

// Analysis is the scored partnership assessment for one candidate company.
type Analysis struct {
	Score                float64        `json:"score"`
	Description          string         `json:"description"`
	Opportunities        []string       `json:"opportunities,omitempty"`
	MarketAnalysis       map[string]any `json:"market_analysis,omitempty"`
	PartnershipPotential map[string]any `json:"partnership_potential,omitempty"`
	Leadership           []string       `json:"leadership,omitempty"`
	Products             []string       `json:"products,omitempty"`
}

// BuildPrompt renders the analysis prompt for a company in an industry.
func BuildPrompt(companyName, industry string) string {
	return fmt.Sprintf(`You are a partnership analyst for a sports and entertainment organization.
Assess the company %q in the %q industry as a potential commercial partner.

Respond with a single JSON object with these fields:
- "score": partnership fit from 0 to 10
- "description": two or three sentences on what the company does
- "opportunities": array of concrete partnership opportunities
- "market_analysis": object with "market_size", "growth_trend", "key_competitors"
- "partnership_potential": object with "fit", "risks", "recommended_approach"
- "leadership": array of known leadership names with titles, empty if unknown
- "products": array of main products or services

Do not invent leadership names. Use empty arrays when information is unknown.`,
		companyName, industry)
}

// Analyze asks the generator for a partnership analysis and validates the
// output before decoding it. The raw validated JSON is returned alongside
// the decoded form so callers can persist it verbatim.
func Analyze(ctx context.Context, gen Generator, companyName, industry string) (*Analysis, json.RawMessage, error) {
	output, err := gen.GenerateJSON(ctx, BuildPrompt(companyName, industry))
	if err != nil {
		return nil, nil, fmt.Errorf("analysis generation failed for %s: %w", companyName, err)
	}

	if err := schemas.ValidateJSONString(analysisSchema, output); err != nil {
		return nil, nil, fmt.Errorf("analysis output rejected for %s: %w", companyName, err)
	}

	var result Analysis
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		return nil, nil, fmt.Errorf("failed to decode analysis for %s: %w", companyName, err)
	}

	return &result, json.RawMessage(output), nil
}

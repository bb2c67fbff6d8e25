// Package research builds long-form partner research reports from the
// partner's own website content plus an LLM summary.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dura-hq/partner-research/internal/analysis"
	"github.com/dura-hq/partner-research/internal/db"
	"github.com/dura-hq/partner-research/internal/fetch"
)

// maxSiteTextLen caps how much website text is quoted in the research
// prompt.
const maxSiteTextLen = 8000

// browserTimeout bounds the headless-browser fallback render.
const browserTimeout = 45 * time.Second

// Store is the slice of the database layer the research generator uses.
type Store interface {
	GetPartnerByID(ctx context.Context, id int64) (*db.PotentialPartner, error)
	GetPartnerResearch(ctx context.Context, partnerID int64) (*db.PartnerResearch, error)
	SavePartnerResearch(ctx context.Context, partnerID int64, partnerName, source string, research json.RawMessage) (*db.PartnerResearch, error)
}

// Report is the generated research payload stored in partner_research.
type Report struct {
	Summary       string   `json:"summary"`
	Strengths     []string `json:"strengths,omitempty"`
	Risks         []string `json:"risks,omitempty"`
	NextSteps     []string `json:"next_steps,omitempty"`
	SourceWebsite string   `json:"source_website,omitempty"`
}

// Generator produces and caches research reports.
type Generator struct {
	store Store
	gen   analysis.Generator
	// FetchOptions override the defaults in tests.
	FetchOptions *fetch.Options
	// DisableBrowser skips the chromedp fallback, for environments
	// without a Chrome binary.
	DisableBrowser bool
}

// NewGenerator wires a research generator.
func NewGenerator(store Store, gen analysis.Generator) *Generator {
	return &Generator{store: store, gen: gen}
}

// Generate returns the stored research for a partner, producing and saving
// it first when none exists.
func (g *Generator) Generate(ctx context.Context, partnerID int64, partnerName, industry string) (*db.PartnerResearch, error) {
	if existing, err := g.store.GetPartnerResearch(ctx, partnerID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	partner, err := g.store.GetPartnerByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, fmt.Errorf("partner %d not found", partnerID)
	}
	if partnerName == "" {
		partnerName = partner.Name
	}
	if industry == "" && partner.Industry != nil {
		industry = *partner.Industry
	}

	siteText, website := g.websiteText(ctx, partner)

	report, err := g.summarize(ctx, partnerName, industry, siteText)
	if err != nil {
		return nil, err
	}
	report.SourceWebsite = website

	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode research report: %w", err)
	}

	source := "llm"
	if website != "" {
		source = "website+llm"
	}
	return g.store.SavePartnerResearch(ctx, partnerID, partnerName, source, payload)
}

// websiteText fetches and extracts the partner's website content. Failures
// degrade to an empty string; the report is then built from the model's
// own knowledge.
func (g *Generator) websiteText(ctx context.Context, partner *db.PotentialPartner) (text, website string) {
	if partner.Website == nil || *partner.Website == "" {
		return "", ""
	}
	website = *partner.Website
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}

	opts := g.FetchOptions
	if opts == nil {
		opts = fetch.DefaultOptions()
	}

	result, err := fetch.URL(ctx, website, opts)
	if err != nil {
		log.Printf("[research] failed to fetch %s: %v", website, err)
		return "", website
	}

	text, err = fetch.ExtractMainText(result.HTML, fetch.CompanyPageSelectors())
	if err != nil {
		log.Printf("[research] failed to extract text from %s: %v", website, err)
		text = ""
	}

	if fetch.ShouldUseBrowser(text) && !g.DisableBrowser {
		rendered, err := fetch.WithBrowser(ctx, website, browserTimeout)
		if err != nil {
			log.Printf("[research] browser render of %s failed: %v", website, err)
		} else if extracted, err := fetch.ExtractMainText(rendered, fetch.CompanyPageSelectors()); err == nil && len(extracted) > len(text) {
			text = extracted
		}
	}

	return truncate(text, maxSiteTextLen), website
}

// truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (g *Generator) summarize(ctx context.Context, partnerName, industry, siteText string) (*Report, error) {
	output, err := g.gen.GenerateJSON(ctx, buildResearchPrompt(partnerName, industry, siteText))
	if err != nil {
		return nil, fmt.Errorf("research generation failed: %w", err)
	}

	var report Report
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		return nil, fmt.Errorf("failed to decode research report: %w", err)
	}
	if report.Summary == "" {
		return nil, fmt.Errorf("research report missing summary")
	}
	return &report, nil
}

func buildResearchPrompt(partnerName, industry, siteText string) string {
	var sb strings.Builder
	sb.WriteString("Write a partnership research report on the company ")
	sb.WriteString(partnerName)
	if industry != "" {
		sb.WriteString(" in the ")
		sb.WriteString(industry)
		sb.WriteString(" industry")
	}
	sb.WriteString(".\n")

	if siteText != "" {
		sb.WriteString("\nContent from the company website:\n")
		sb.WriteString(siteText)
		sb.WriteString("\n")
	}

	sb.WriteString(`
Respond with a JSON object:
{
  "summary": "multi-paragraph research summary",
  "strengths": ["..."],
  "risks": ["..."],
  "next_steps": ["..."]
}`)
	return sb.String()
}

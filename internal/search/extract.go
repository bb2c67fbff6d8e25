package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dura-hq/partner-research/internal/analysis"
)

// maxSnippetLen caps how much page text is quoted per result in the
// extraction prompt.
const maxSnippetLen = 400

// ExtractCompanyNames asks the generator to pull distinct company names out
// of web search results. Returns deduplicated names preserving first-seen
// order.
func ExtractCompanyNames(ctx context.Context, gen analysis.Generator, results []ExaResult, query string) ([]string, error) {
	if len(results) == 0 {
		return nil, nil
	}

	output, err := gen.GenerateJSON(ctx, buildExtractionPrompt(results, query))
	if err != nil {
		return nil, fmt.Errorf("company extraction failed: %w", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(output), &names); err != nil {
		return nil, fmt.Errorf("failed to decode extracted names: %w", err)
	}

	seen := map[string]bool{}
	var deduped []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		deduped = append(deduped, name)
	}
	return deduped, nil
}

func buildExtractionPrompt(results []ExaResult, query string) string {
	var sb strings.Builder
	sb.WriteString("Extract the names of companies operating in the industry: ")
	sb.WriteString(query)
	sb.WriteString("\n\nWeb search results:\n")

	for i, r := range results {
		snippet := truncate(r.Text, maxSnippetLen)
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n%s\n", i+1, r.Title, r.URL, snippet))
	}

	sb.WriteString("\nRespond with a JSON array of company name strings only. ")
	sb.WriteString("Exclude publications, directories, and event names.")
	return sb.String()
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

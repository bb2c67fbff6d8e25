package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultExaBaseURL is the production Exa search API root.
const DefaultExaBaseURL = "https://api.exa.ai"

// ExaResult is one web search hit used for company discovery.
type ExaResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text,omitempty"`
}

type exaRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults"`
	Type       string `json:"type"`
}

type exaResponse struct {
	Results []ExaResult `json:"results"`
}

// ExaClient is a thin wrapper over the Exa web-search API.
type ExaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewExaClient creates an Exa client. An empty baseURL selects production.
func NewExaClient(baseURL string) *ExaClient {
	if baseURL == "" {
		baseURL = DefaultExaBaseURL
	}
	return &ExaClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Search runs a neural web search for companies matching the query.
func (c *ExaClient) Search(ctx context.Context, apiKey, query string, numResults int) ([]ExaResult, error) {
	if numResults <= 0 {
		numResults = 20
	}

	payload, err := json.Marshal(exaRequest{
		Query:      query,
		NumResults: numResults,
		Type:       "neural",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned HTTP %d", resp.StatusCode)
	}

	var decoded exaResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return decoded.Results, nil
}

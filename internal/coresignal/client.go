// Package coresignal provides a thin client for the Coresignal company-data
// API: a search request followed by a detail fetch for the first hit.
package coresignal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Coresignal API root.
const DefaultBaseURL = "https://api.coresignal.com/v1"

// DefaultTimeout is the per-request HTTP timeout.
const DefaultTimeout = 30 * time.Second

// ErrNotFound indicates the search returned no results for the company name.
// This is a legitimate outcome, distinct from a transport or server failure.
var ErrNotFound = errors.New("company not found")

// Error represents a transport or server failure from the Coresignal API.
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("coresignal error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("coresignal error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Client issues requests against the Coresignal API. The API key is passed
// per call rather than held by the client, so webhook-supplied keys and
// config-supplied keys share one code path.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Options configures the client.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a Coresignal client.
func NewClient(opts *Options) *Client {
	baseURL := DefaultBaseURL
	timeout := DefaultTimeout
	if opts != nil {
		if opts.BaseURL != "" {
			baseURL = opts.BaseURL
		}
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchCompanies searches for companies matching name.
func (c *Client) SearchCompanies(ctx context.Context, apiKey, name string) ([]SearchResult, error) {
	searchURL := fmt.Sprintf("%s/companies/search?query=%s", c.baseURL, url.QueryEscape(name))

	body, err := c.get(ctx, apiKey, searchURL)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{URL: searchURL, Message: "failed to decode search response", Cause: err}
	}
	return resp.Results, nil
}

// GetCompany fetches the detail payload for a company id.
func (c *Client) GetCompany(ctx context.Context, apiKey string, id int64) (*CompanyData, error) {
	detailURL := fmt.Sprintf("%s/companies/%d", c.baseURL, id)

	body, err := c.get(ctx, apiKey, detailURL)
	if err != nil {
		return nil, err
	}

	data, err := ParseCompanyData(body)
	if err != nil {
		return nil, &Error{URL: detailURL, Message: "failed to decode company detail", Cause: err}
	}
	return data, nil
}

// FetchCompanyData runs the search-then-detail sequence for a company name.
// Returns ErrNotFound when the search yields no results; any other failure
// is a transport/server error. No retries are attempted at any step.
func (c *Client) FetchCompanyData(ctx context.Context, apiKey, companyName string) (*CompanyData, error) {
	results, err := c.SearchCompanies(ctx, apiKey, companyName)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	return c.GetCompany(ctx, apiKey, results[0].ID)
}

// get performs a bearer-authenticated GET and returns the body for 2xx
// responses.
func (c *Client) get(ctx context.Context, apiKey, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &Error{URL: requestURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: requestURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: requestURL, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			URL:        requestURL,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}
	return body, nil
}

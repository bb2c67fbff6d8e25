package coresignal

import "encoding/json"

// SearchResult is one entry in the company search response.
type SearchResult struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// searchResponse is the wire shape of GET /v1/companies/search.
type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// CompanyData holds a company detail payload. Raw preserves the provider
// response verbatim (the cache stores it untouched); the decoded fields
// cover only what the enrichment workflow recognizes.
type CompanyData struct {
	Raw json.RawMessage `json:"-"`

	Name               string          `json:"name,omitempty"`
	Website            string          `json:"website,omitempty"`
	LinkedInURL        string          `json:"linkedin_url,omitempty"`
	Industry           string          `json:"industry,omitempty"`
	Description        string          `json:"description,omitempty"`
	HQLocation         string          `json:"hq_location,omitempty"`
	EmployeeCount      int             `json:"employee_count,omitempty"`
	RevenueAnnualRange string          `json:"revenue_annual_range,omitempty"`
	FoundedYear        int             `json:"founded_year,omitempty"`
	SocialMedia        json.RawMessage `json:"social_media,omitempty"`
	Leadership         json.RawMessage `json:"leadership,omitempty"`
	Products           json.RawMessage `json:"products,omitempty"`
	Competitors        json.RawMessage `json:"competitors,omitempty"`
}

// ParseCompanyData decodes a provider payload, keeping the raw bytes.
func ParseCompanyData(raw json.RawMessage) (*CompanyData, error) {
	var data CompanyData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	data.Raw = raw
	return &data, nil
}

// companyDetails mirrors the nested wrapper some cached payloads carry
// (the SPA stored detail blobs under a company_details key).
type companyDetails struct {
	CompanyDetails map[string]json.RawMessage `json:"company_details"`
}

// LooksAuthentic reports whether a payload appears to be real provider data
// rather than a mock/placeholder blob. A payload is considered mock when the
// detail object is empty or when it carries neither a website nor a
// LinkedIn URL.
func LooksAuthentic(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	// Unwrap a company_details envelope if present.
	var wrapped companyDetails
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.CompanyDetails != nil {
		if len(wrapped.CompanyDetails) == 0 {
			return false
		}
		fields = wrapped.CompanyDetails
	} else if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	if len(fields) == 0 {
		return false
	}

	return nonEmptyString(fields["website"]) || nonEmptyString(fields["linkedin_url"])
}

func nonEmptyString(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return s != ""
}

package coresignal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(&Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
	return client, srv
}

func TestFetchCompanyData_SearchThenDetail(t *testing.T) {
	var searchCalls, detailCalls int
	var gotAuth string

	mux := http.NewServeMux()
	mux.HandleFunc("/companies/search", func(w http.ResponseWriter, r *http.Request) {
		searchCalls++
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "Acme Co", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"results":[{"id":42,"name":"Acme Co"},{"id":43}]}`))
	})
	mux.HandleFunc("/companies/42", func(w http.ResponseWriter, _ *http.Request) {
		detailCalls++
		_, _ = w.Write([]byte(`{"website":"acme.com","industry":"Manufacturing"}`))
	})

	client, _ := newTestClient(t, mux)

	data, err := client.FetchCompanyData(context.Background(), "test-key", "Acme Co")
	require.NoError(t, err)

	assert.Equal(t, 1, searchCalls)
	assert.Equal(t, 1, detailCalls, "only the first search result is fetched")
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "acme.com", data.Website)
	assert.Equal(t, "Manufacturing", data.Industry)
	assert.JSONEq(t, `{"website":"acme.com","industry":"Manufacturing"}`, string(data.Raw))
}

func TestFetchCompanyData_EmptyResultsIsNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))

	_, err := client.FetchCompanyData(context.Background(), "key", "Nobody Inc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchCompanyData_SearchErrorIsTransient(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.FetchCompanyData(context.Background(), "key", "Acme Co")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound, "server failures are distinct from not-found")

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestFetchCompanyData_DetailErrorAborts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/companies/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":42}]}`))
	})
	mux.HandleFunc("/companies/42", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.FetchCompanyData(context.Background(), "key", "Acme Co")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLooksAuthentic(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"empty payload", ``, false},
		{"not an object", `"hello"`, false},
		{"empty object", `{}`, false},
		{"empty company_details", `{"company_details":{}}`, false},
		{"no urls at all", `{"name":"Acme","industry":"Mfg"}`, false},
		{"website present", `{"website":"acme.com"}`, true},
		{"linkedin present", `{"linkedin_url":"https://linkedin.com/company/acme"}`, true},
		{"empty url strings", `{"website":"","linkedin_url":""}`, false},
		{"wrapped with website", `{"company_details":{"website":"acme.com","size":"51-200"}}`, true},
		{"wrapped without urls", `{"company_details":{"size":"51-200","industry":"Mfg"}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksAuthentic(json.RawMessage(tt.raw)))
		})
	}
}

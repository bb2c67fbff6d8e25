package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dura-hq/partner-research/internal/db"
)

type fakeStore struct {
	partnerNames []string
	considered   []string
	created      []db.PotentialPartner
	searches     []string
	createErr    error
	nextID       int64
	consideredBy []string
}

func (s *fakeStore) CreatePartner(_ context.Context, p *db.PotentialPartner) (int64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.created = append(s.created, *p)
	s.nextID++
	return s.nextID, nil
}

func (s *fakeStore) ListPartnerNames(context.Context) ([]string, error) {
	return s.partnerNames, nil
}

func (s *fakeStore) ListConsideredCompanies(context.Context) ([]string, error) {
	return s.considered, nil
}

func (s *fakeStore) AddConsideredCompany(_ context.Context, name string) error {
	s.consideredBy = append(s.consideredBy, name)
	return nil
}

func (s *fakeStore) RecordSearch(_ context.Context, query, searchType string, resultsCount int) error {
	s.searches = append(s.searches, fmt.Sprintf("%s/%s/%d", query, searchType, resultsCount))
	return nil
}

// pipelineGenerator answers the extraction prompt with a name array and
// analysis prompts with a scored assessment.
type pipelineGenerator struct {
	names      []string
	analysisBy []string
	failFor    map[string]bool
}

func (g *pipelineGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "Extract the names") {
		out, _ := json.Marshal(g.names)
		return string(out), nil
	}
	for _, name := range g.names {
		if strings.Contains(prompt, name) {
			if g.failFor[name] {
				return "", fmt.Errorf("model overloaded")
			}
			g.analysisBy = append(g.analysisBy, name)
			return fmt.Sprintf(`{"score": 7.5, "description": "Assessment of %s"}`, name), nil
		}
	}
	return "", fmt.Errorf("unexpected prompt")
}

func (g *pipelineGenerator) Close() error { return nil }

func exaServer(t *testing.T, results []ExaResult) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		_ = json.NewEncoder(w).Encode(exaResponse{Results: results})
	}))
}

func TestRunnerEndToEnd(t *testing.T) {
	srv := exaServer(t, []ExaResult{
		{Title: "Top vendors", URL: "https://example.com/vendors", Text: "Acme Co and Globex lead the field"},
	})
	defer srv.Close()

	store := &fakeStore{}
	gen := &pipelineGenerator{names: []string{"Acme Co", "Globex"}}
	runner := NewRunner(NewTracker(), store, NewExaClient(srv.URL), gen, "key")

	runner.run("logistics")

	status := runner.Tracker().Snapshot()
	require.Equal(t, StepCompleted, status.CurrentStep)
	assert.True(t, status.Completed)
	assert.Contains(t, status.Message, "Found 2 potential partners")

	partners, ok := status.Results.([]FoundPartner)
	require.True(t, ok)
	require.Len(t, partners, 2)
	assert.Equal(t, "Acme Co", partners[0].Name)
	assert.Equal(t, 7.5, partners[0].Score)

	require.Len(t, store.created, 2)
	assert.Equal(t, "logistics", *store.created[0].Industry)
	assert.Equal(t, "Assessment of Acme Co", *store.created[0].Description)
	assert.Equal(t, []string{"Acme Co", "Globex"}, store.consideredBy)
	assert.Equal(t, []string{"logistics/industry/2"}, store.searches)
}

func TestRunnerSkipsKnownCompanies(t *testing.T) {
	srv := exaServer(t, []ExaResult{{Title: "vendors", URL: "https://example.com"}})
	defer srv.Close()

	// Known names match through normalization: the stored partner carries
	// punctuation, the considered ledger is lowercase.
	store := &fakeStore{considered: []string{"globex"}, partnerNames: []string{"Acme Co."}}
	gen := &pipelineGenerator{names: []string{"Acme Co", "Globex", "Initech"}}
	runner := NewRunner(NewTracker(), store, NewExaClient(srv.URL), gen, "key")

	runner.run("logistics")

	require.Len(t, store.created, 1)
	assert.Equal(t, "Initech", store.created[0].Name)
	assert.Equal(t, []string{"Initech"}, store.consideredBy)
}

func TestFilterCandidatesNormalizesNames(t *testing.T) {
	store := &fakeStore{
		partnerNames: []string{"Acme Co."},
		considered:   []string{"globex inc"},
	}
	runner := NewRunner(NewTracker(), store, nil, nil, "key")

	candidates, err := runner.filterCandidates(context.Background(), []string{
		"acme co",
		"Globex, Inc.",
		"Initech",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Initech"}, candidates)
}

func TestRunnerFailedAnalysisSkipsCompanyOnly(t *testing.T) {
	srv := exaServer(t, []ExaResult{{Title: "vendors", URL: "https://example.com"}})
	defer srv.Close()

	store := &fakeStore{}
	gen := &pipelineGenerator{
		names:   []string{"Acme Co", "Globex"},
		failFor: map[string]bool{"Acme Co": true},
	}
	runner := NewRunner(NewTracker(), store, NewExaClient(srv.URL), gen, "key")

	runner.run("logistics")

	status := runner.Tracker().Snapshot()
	assert.Equal(t, StepCompleted, status.CurrentStep)
	require.Len(t, store.created, 1)
	assert.Equal(t, "Globex", store.created[0].Name)
}

func TestRunnerNoNewCompaniesFails(t *testing.T) {
	srv := exaServer(t, []ExaResult{{Title: "vendors", URL: "https://example.com"}})
	defer srv.Close()

	store := &fakeStore{considered: []string{"acme co"}}
	gen := &pipelineGenerator{names: []string{"Acme Co"}}
	runner := NewRunner(NewTracker(), store, NewExaClient(srv.URL), gen, "key")

	runner.run("logistics")

	status := runner.Tracker().Snapshot()
	assert.Equal(t, StepError, status.CurrentStep)
	assert.Contains(t, status.Error, "No new companies")
	assert.Empty(t, store.created)
}

func TestRunnerSearchProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := &fakeStore{}
	runner := NewRunner(NewTracker(), store, NewExaClient(srv.URL), &pipelineGenerator{}, "key")

	runner.run("logistics")

	status := runner.Tracker().Snapshot()
	assert.Equal(t, StepError, status.CurrentStep)
	assert.Empty(t, store.searches)
}

func TestStartValidation(t *testing.T) {
	runner := NewRunner(NewTracker(), &fakeStore{}, NewExaClient(""), &pipelineGenerator{}, "key")

	err := runner.Start("   ")
	assert.ErrorContains(t, err, "cannot be empty")

	noKey := NewRunner(NewTracker(), &fakeStore{}, NewExaClient(""), &pipelineGenerator{}, "")
	err = noKey.Start("logistics")
	assert.ErrorContains(t, err, "not configured")
}

func TestStartRejectsConcurrentRuns(t *testing.T) {
	tracker := NewTracker()
	tracker.Update(StepSearching, "busy", 10)
	runner := NewRunner(tracker, &fakeStore{}, NewExaClient(""), &pipelineGenerator{}, "key")

	err := runner.Start("logistics")
	assert.ErrorContains(t, err, "already in progress")
}

func TestExtractCompanyNamesDedupes(t *testing.T) {
	gen := &staticGenerator{output: `["Acme Co", "acme co", " Globex ", ""]`}

	names, err := ExtractCompanyNames(context.Background(), gen, []ExaResult{{Title: "x"}}, "logistics")
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Co", "Globex"}, names)
}

func TestExtractCompanyNamesEmptyResults(t *testing.T) {
	names, err := ExtractCompanyNames(context.Background(), &staticGenerator{}, nil, "logistics")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	// Multibyte text sized so a byte cut at maxSnippetLen would land
	// mid-rune.
	text := strings.Repeat("ü", maxSnippetLen)
	prompt := buildExtractionPrompt([]ExaResult{{Title: "x", URL: "https://example.com", Text: text}}, "logistics")
	assert.True(t, utf8.ValidString(prompt))

	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcd", 2))
	assert.Equal(t, "é", truncate("éé", 3))
	assert.Equal(t, "", truncate("é", 1))
	assert.True(t, utf8.ValidString(truncate(text, maxSnippetLen)))
	assert.LessOrEqual(t, len(truncate(text, maxSnippetLen)), maxSnippetLen)
}

type staticGenerator struct {
	output string
	err    error
}

func (g *staticGenerator) GenerateJSON(context.Context, string) (string, error) {
	return g.output, g.err
}

func (g *staticGenerator) Close() error { return nil }

package server

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dura-hq/partner-research/internal/config"
	"github.com/dura-hq/partner-research/internal/db"
	"github.com/dura-hq/partner-research/internal/enrich"
	"github.com/dura-hq/partner-research/internal/search"
)

// fakeStore implements Store in memory for handler tests.
type fakeStore struct {
	partners     map[int64]*db.PotentialPartner
	cache        map[string]*db.CompanyCache
	history      []db.SearchRecord
	users        map[string]*db.User
	resetCalled  bool
	listErr      error
	historyLimit int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		partners: map[int64]*db.PotentialPartner{},
		cache:    map[string]*db.CompanyCache{},
		users:    map[string]*db.User{},
	}
}

func (s *fakeStore) GetPartnerByID(_ context.Context, id int64) (*db.PotentialPartner, error) {
	return s.partners[id], nil
}

func (s *fakeStore) ListPartners(_ context.Context, limit, _ int) ([]db.PotentialPartner, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []db.PotentialPartner
	for _, p := range s.partners {
		if len(out) >= limit {
			break
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakeStore) TopPartners(_ context.Context, limit int) ([]db.PotentialPartner, error) {
	return s.ListPartners(context.Background(), limit, 0)
}

func (s *fakeStore) GetCompanyCache(_ context.Context, name string) (*db.CompanyCache, error) {
	return s.cache[name], nil
}

func (s *fakeStore) ListSearchHistory(_ context.Context, limit int) ([]db.SearchRecord, error) {
	s.historyLimit = limit
	return s.history, nil
}

func (s *fakeStore) ResetHistory(context.Context) error {
	s.resetCalled = true
	return nil
}

func (s *fakeStore) CreateUser(_ context.Context, email, passwordHash string) (*db.User, error) {
	u := &db.User{ID: uuid.New(), Email: email, PasswordHash: passwordHash}
	s.users[email] = u
	return u, nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	return s.users[email], nil
}

func (s *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*db.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// fakeEnricher records calls and replays a canned result.
type fakeEnricher struct {
	result enrich.Result
	calls  []enrichCall
}

type enrichCall struct {
	partnerID int64
	company   string
	apiKey    string
}

func (e *fakeEnricher) Enrich(_ context.Context, partnerID int64, companyName, apiKey string) enrich.Result {
	e.calls = append(e.calls, enrichCall{partnerID, companyName, apiKey})
	return e.result
}

// fakeSearches is a canned SearchService.
type fakeSearches struct {
	startErr error
	started  []string
	status   search.Status
}

func (s *fakeSearches) Start(query string) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = append(s.started, query)
	return nil
}

func (s *fakeSearches) Status() search.Status {
	return s.status
}

// fakeResearch is a canned ResearchService.
type fakeResearch struct {
	report *db.PartnerResearch
	err    error
}

func (r *fakeResearch) Generate(_ context.Context, partnerID int64, partnerName, _ string) (*db.PartnerResearch, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.report != nil {
		return r.report, nil
	}
	return &db.PartnerResearch{PartnerID: partnerID, PartnerName: partnerName}, nil
}

// newTestServer assembles a server with fake services, skipping the
// database connection that New performs.
func newTestServer(t *testing.T, store Store, enricher EnrichService, searches SearchService, research ResearchService) *Server {
	t.Helper()

	jwtService := NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1})
	passwordConfig := &config.PasswordConfig{BcryptCost: 10}
	userService := NewUserService(store, passwordConfig)

	return &Server{
		store:       store,
		enricher:    enricher,
		searches:    searches,
		research:    research,
		jwtService:  jwtService,
		userService: userService,
		authHandler: NewAuthHandler(userService, jwtService),
	}
}

// bearerFor issues a valid token for an arbitrary user.
func bearerFor(t *testing.T, s *Server) string {
	t.Helper()
	token, err := s.jwtService.GenerateToken(uuid.New())
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + token
}

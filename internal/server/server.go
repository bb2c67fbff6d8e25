// Package server provides the HTTP API for the partner research service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dura-hq/partner-research/internal/analysis"
	"github.com/dura-hq/partner-research/internal/config"
	"github.com/dura-hq/partner-research/internal/coresignal"
	"github.com/dura-hq/partner-research/internal/db"
	"github.com/dura-hq/partner-research/internal/enrich"
	"github.com/dura-hq/partner-research/internal/research"
	"github.com/dura-hq/partner-research/internal/search"
	"github.com/dura-hq/partner-research/internal/server/middleware"
	"github.com/dura-hq/partner-research/internal/server/ratelimit"
)

// Store is the database surface the HTTP handlers read from.
type Store interface {
	UserStore
	GetPartnerByID(ctx context.Context, id int64) (*db.PotentialPartner, error)
	ListPartners(ctx context.Context, limit, offset int) ([]db.PotentialPartner, error)
	TopPartners(ctx context.Context, limit int) ([]db.PotentialPartner, error)
	GetCompanyCache(ctx context.Context, companyName string) (*db.CompanyCache, error)
	ListSearchHistory(ctx context.Context, limit int) ([]db.SearchRecord, error)
	ResetHistory(ctx context.Context) error
}

// EnrichService runs the company enrichment workflow.
type EnrichService interface {
	Enrich(ctx context.Context, partnerID int64, companyName, apiKey string) enrich.Result
}

// SearchService starts background industry searches and reports progress.
type SearchService interface {
	Start(query string) error
	Status() search.Status
}

// ResearchService produces partner research reports.
type ResearchService interface {
	Generate(ctx context.Context, partnerID int64, partnerName, industry string) (*db.PartnerResearch, error)
}

// Server is the HTTP API server.
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	store       Store
	enricher    EnrichService
	searches    SearchService
	research    ResearchService
	generator   analysis.Generator
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler

	// apiKey is the fallback Coresignal key for row-event triggers that do
	// not carry one in the payload.
	apiKey string
}

// New connects to the database, wires the workflows, and builds the server.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	fetcher := coresignal.NewClient(&coresignal.Options{BaseURL: cfg.CoresignalBaseURL})
	enricher := enrich.New(database, database, fetcher, cfg.CacheTTL)

	var generator analysis.Generator
	if cfg.GeminiAPIKey != "" {
		generator, err = analysis.NewGeminiClient(ctx, cfg.GeminiAPIKey, "")
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create analysis client: %w", err)
		}
	}

	var searches SearchService
	var researchSvc ResearchService
	if generator != nil {
		runner := search.NewRunner(search.NewTracker(), database, search.NewExaClient(""), generator, cfg.ExaAPIKey)
		searches = &runnerAdapter{runner: runner}
		researchSvc = research.NewGenerator(database, generator)
	}

	s := &Server{
		db:        database,
		store:     database,
		enricher:  enricher,
		searches:  searches,
		research:  researchSvc,
		generator: generator,
		apiKey:    cfg.CoresignalAPIKey,
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// runnerAdapter narrows *search.Runner to the SearchService interface.
type runnerAdapter struct {
	runner *search.Runner
}

func (a *runnerAdapter) Start(query string) error {
	return a.runner.Start(query)
}

func (a *runnerAdapter) Status() search.Status {
	return a.runner.Tracker().Snapshot()
}

// routes builds the request multiplexer.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Enrichment triggers. These authenticate with the api_key carried in
	// the request body, not a bearer token.
	mux.HandleFunc("POST /webhook/enrich", s.handleEnrichWebhook)
	mux.HandleFunc("POST /hooks/partner-event", s.handlePartnerEvent)

	// Auth
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	// Partner reads
	mux.HandleFunc("GET /api/partners", s.handleListPartners)
	mux.HandleFunc("GET /api/partners/{id}", s.handleGetPartner)
	mux.HandleFunc("GET /api/top-partners", s.handleTopPartners)
	mux.HandleFunc("GET /api/company-cache", s.handleGetCompanyCache)

	// Search pipeline
	requireAuth := middleware.RequireAuth(s.jwtService.AsTokenValidator())
	mux.Handle("POST /api/search", requireAuth(http.HandlerFunc(s.handleStartSearch)))
	mux.HandleFunc("GET /api/search-status", s.handleSearchStatus)
	mux.HandleFunc("GET /api/search-history", s.handleSearchHistory)
	mux.Handle("POST /api/reset-history", requireAuth(http.HandlerFunc(s.handleResetHistory)))

	// Research
	mux.Handle("POST /api/generate-partner-research", requireAuth(http.HandlerFunc(s.handleGenerateResearch)))

	return mux
}

// Start listens for requests until an interrupt, then shuts down cleanly.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.generator != nil {
		_ = s.generator.Close()
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withCORS adds CORS headers for the SPA front-end.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := clientIP(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())+1))
			s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests, please try again later",
				"retry_after": info.RetryAfter.Seconds(),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

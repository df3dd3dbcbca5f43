package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/PeytonNagle/MoodMusic2/internal/history"
	"github.com/PeytonNagle/MoodMusic2/internal/recommend"
)

// Engine is the recommendation pipeline surface the handlers drive.
type Engine interface {
	Analyze(ctx context.Context, q recommend.MoodQuery) (recommend.MoodAnalysis, error)
	Recommend(ctx context.Context, q recommend.MoodQuery) (recommend.Result, error)
	RecommendWithAnalysis(ctx context.Context, q recommend.MoodQuery, analysis recommend.MoodAnalysis) (recommend.Result, error)
}

// ConnectionTester reports reachability of an external collaborator for the
// health endpoint.
type ConnectionTester interface {
	TestConnection(ctx context.Context) bool
}

type Server struct {
	engine Engine
	repo   history.Repository

	aiProvider string
	aiTester   ConnectionTester
	catTester  ConnectionTester

	jwtSecret []byte
	accessTTL time.Duration
}

func NewServer(engine Engine, repo history.Repository, jwtSecret []byte) *Server {
	return &Server{
		engine:    engine,
		repo:      repo,
		jwtSecret: jwtSecret,
		accessTTL: 24 * time.Hour,
	}
}

// WithHealthTargets registers the collaborators probed by /api/health.
func (s *Server) WithHealthTargets(aiProvider string, ai, cat ConnectionTester) *Server {
	s.aiProvider = aiProvider
	s.aiTester = ai
	s.catTester = cat
	return s
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/api/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(optionalAuthMiddleware(s.jwtSecret))
		r.Post("/api/search", s.handleSearch)
		r.Post("/api/analyze", s.handleAnalyze)
		r.Post("/api/recommend", s.handleRecommend)
	})

	r.Post("/api/users/register", s.handleRegister)
	r.Post("/api/users/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(requireAuthMiddleware(s.jwtSecret))
		r.Get("/api/history/{userID}", s.handleHistory)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	aiOK := s.aiTester != nil && s.aiTester.TestConnection(ctx)
	catOK := s.catTester != nil && s.catTester.TestConnection(ctx)

	status := "ok"
	if !aiOK || !catOK {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      status,
		"ai_provider": s.aiProvider,
		"ai":          aiOK,
		"catalog":     catOK,
	})
}

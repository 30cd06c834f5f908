package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docsum/internal/config"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/pipeline"
	"github.com/dgallion1/docsum/internal/render"
)

// ModelServer is the summarization backend as seen by the HTTP layer.
type ModelServer interface {
	HealthCheck(ctx context.Context) error
	Model() string
}

// Server is the HTTP API server for docsum.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	model        ModelServer
	stats        *llm.Stats
	converter    render.Converter
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, model ModelServer, stats *llm.Stats, conv render.Converter, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		model:        model,
		stats:        stats,
		converter:    conv,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints when an API key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/status", s.handleStatus)
		r.Get("/chapters", s.handleChapters)
		r.Post("/upload", s.handleUpload)
		r.Get("/api/run", s.handleCurrentRun)
		r.Post("/check-services", s.handleCheckServices)
		r.Get("/download-docx", s.handleDownloadDOCX)
		r.Get("/download-html", s.handleDownloadHTML)
		r.Get("/config", s.handleConfig)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

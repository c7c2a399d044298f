package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/xmlreport/internal/config"
	"github.com/dgallion1/xmlreport/internal/pipeline"
	"github.com/dgallion1/xmlreport/internal/rules"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for xmlreport.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	rules        *rules.Store
	stats        *pipeline.ConversionStats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, store *rules.Store, stats *pipeline.ConversionStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		rules:        store,
		stats:        stats,
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.ReportAPIKey, s.log))

		r.Post("/api/convert", s.handleConvert)

		r.Post("/api/reports", s.handleSubmitReport)
		r.Post("/api/reports/batch", s.handleBatchReports)
		r.Get("/api/reports/{jobID}/status", s.handleReportStatus)
		r.Get("/api/reports/{jobID}/document", s.handleReportDocument)

		r.Get("/api/rules", s.handleRules)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Package server provides the HTTP server and routing for the portfolio
// analysis API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/mgarrido/folio/internal/config"
	"github.com/mgarrido/folio/internal/database"
	"github.com/mgarrido/folio/internal/services"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Cfg       *config.Config
	HistoryDB *database.DB
	CacheDB   *database.DB
	Analysis  *services.AnalysisService
	Importer  *services.ImportService
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	cfg       *config.Config
	historyDB *database.DB
	cacheDB   *database.DB
	analysis  *services.AnalysisService
	importer  *services.ImportService
	startedAt time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Cfg,
		historyDB: cfg.HistoryDB,
		cacheDB:   cfg.CacheDB,
		analysis:  cfg.Analysis,
		importer:  cfg.Importer,
		startedAt: time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	h := NewHandlers(s.analysis, s.importer, s.cfg, s.log)
	sys := NewSystemHandlers(s.historyDB, s.cacheDB, s.startedAt, s.log)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/assets", h.HandleGetAssets)
		r.Post("/analysis", h.HandleRunAnalysis)
		r.Post("/series/refresh", h.HandleRefreshSeries)
		r.Get("/system/status", sys.HandleStatus)
	})
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	s.log.Info().Str("addr", addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

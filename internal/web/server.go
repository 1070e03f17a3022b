package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/frushion/internal/analysis"
	"github.com/kozaktomas/frushion/internal/client"
	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/expression"
	"github.com/kozaktomas/frushion/internal/filters"
	"github.com/kozaktomas/frushion/internal/trends"
	"github.com/kozaktomas/frushion/internal/web/handlers"
	"github.com/kozaktomas/frushion/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config      *config.Config
	router      *chi.Mux
	httpServer  *http.Server
	liveManager *handlers.LiveManager
	catalog     *trends.Catalog
	classifier  expression.Classifier
	applier     filters.Applier
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, port int, host string) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:      cfg,
		router:      r,
		liveManager: handlers.NewLiveManager(),
		catalog:     trends.NewCatalog(cfg.Trends.Items, cfg.Trends.Delay),
		classifier:  serviceClassifier(cfg),
	}
	// Filter toggles are forwarded to the analysis service when one is configured.
	if cfg.Analysis.ServiceURL != "" {
		s.applier = client.New(cfg.Analysis.ServiceURL)
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE streams stay open for the whole live session
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// serviceClassifier picks the classifier behind POST /analyze_expression.
// The server is itself the remote service, so "remote" falls back to simulated expressions.
func serviceClassifier(cfg *config.Config) expression.Classifier {
	name := cfg.Analysis.ExpressionProvider
	if name == analysis.SourceRemote {
		return expression.NewSimulatedClassifier(nil)
	}
	c, err := analysis.NewClassifier(context.Background(), cfg, name)
	if err != nil {
		log.Printf("Expression provider %s unavailable, using simulated expressions: %v", name, err)
		return expression.NewSimulatedClassifier(nil)
	}
	return c
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops the live session and gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	if session, err := s.liveManager.Stop(); session != nil && err != nil {
		log.Printf("Failed to close live session %s: %v", session.ID(), err)
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}

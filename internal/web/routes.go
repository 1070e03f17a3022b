package web

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/frushion/internal/web/handlers"
	"github.com/kozaktomas/frushion/internal/web/static"
)

func (s *Server) setupRoutes() {
	// Create handlers
	configHandler := handlers.NewConfigHandler(s.config)
	scoreHandler := handlers.NewScoreHandler(s.config, s.classifier)
	liveHandler := handlers.NewLiveHandler(s.config, s.liveManager)
	analysesHandler := handlers.NewAnalysesHandler(s.liveManager)
	trendsHandler := handlers.NewTrendsHandler(s.catalog)
	filtersHandler := handlers.NewFiltersHandler(s.applier)

	// Analysis service endpoints called by capture clients
	s.router.Post("/api/score", scoreHandler.Score)
	s.router.Post("/analyze", scoreHandler.AnalyzeFrame)
	s.router.Post("/analyze_expression", scoreHandler.AnalyzeExpression)
	s.router.Post("/apply-filters", filtersHandler.Apply)
	s.router.Get("/api/trends", trendsHandler.List)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Get("/config", configHandler.Get)

		// Scoring
		r.Post("/score", scoreHandler.Score)
		r.Post("/score/image", scoreHandler.ScoreImage)

		// Saved analyses
		r.Get("/analyses", analysesHandler.List)
		r.Post("/analyses", analysesHandler.Save)
		r.Get("/analyses/export", analysesHandler.Export)
		r.Get("/analyses/{id}", analysesHandler.Get)
		r.Delete("/analyses/{id}", analysesHandler.Delete)

		// Live capture session
		r.Get("/live", liveHandler.Get)
		r.Post("/live/start", liveHandler.Start)
		r.Post("/live/stop", liveHandler.Stop)
		r.Post("/live/trigger", liveHandler.Trigger)
		r.Get("/live/events", liveHandler.Events)
		r.Delete("/live/result", liveHandler.ResetResult)

		// Reference data
		r.Get("/skin/distribution", handlers.SkinDistribution)
		r.Get("/trends", trendsHandler.Categorized)

		// Cosmetic filters
		r.Get("/filters", filtersHandler.List)
		r.Post("/filters/{name}/toggle", filtersHandler.Toggle)
	})

	// Serve static files for frontend (SPA)
	s.router.Get("/*", s.serveSPA)
}

// serveSPA serves the embedded capture page, falling back to index.html for client routes.
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	if static.HasDist() {
		fs := static.GetFileSystem()
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		if f, err := fs.Open(path); err == nil {
			defer f.Close()
			if stat, err := f.Stat(); err == nil && !stat.IsDir() {
				contentType := mime.TypeByExtension(filepath.Ext(path))
				if contentType == "" {
					contentType = "application/octet-stream"
				}
				w.Header().Set("Content-Type", contentType)
				if strings.HasPrefix(path, "/assets/") {
					w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
				}
				w.WriteHeader(http.StatusOK)
				io.Copy(w, f)
				return
			}
		}

		if !strings.HasPrefix(path, "/assets/") {
			if indexFile, err := fs.Open("/index.html"); err == nil {
				defer indexFile.Close()
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusOK)
				io.Copy(w, indexFile)
				return
			}
		}
	}

	http.NotFound(w, r)
}

// Package api provides the gitquest HTTP server: a small JSON REST surface
// over the progression services, plus Prometheus metrics.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gitquest-dev/gitquest/internal/app/progression"
	"github.com/gitquest-dev/gitquest/internal/health"
	"github.com/gitquest-dev/gitquest/internal/infra/sqlite"
)

// Server is the gitquest HTTP API server.
type Server struct {
	db         *sqlite.DB
	snapshots  *progression.SnapshotService
	challenges *progression.ChallengeService
	badges     *progression.BadgeService
	sync       *progression.SyncService

	health *health.Checker

	nearCompletionPct int
	metricsEnabled    bool
}

// NewServer creates a new API server.
func NewServer(db *sqlite.DB, snapshots *progression.SnapshotService, challenges *progression.ChallengeService, badges *progression.BadgeService, syncSvc *progression.SyncService) *Server {
	return &Server{
		db:                db,
		snapshots:         snapshots,
		challenges:        challenges,
		badges:            badges,
		sync:              syncSvc,
		nearCompletionPct: 80,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetNearCompletionPct sets the threshold for the near-completion surface.
func (s *Server) SetNearCompletionPct(pct int) { s.nearCompletionPct = pct }

// SetHealthChecker attaches the daemon's health checker to /health.
func (s *Server) SetHealthChecker(h *health.Checker) { s.health = h }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/users/{user}", func(r chi.Router) {
		r.Get("/level", s.handleLevel)
		r.Get("/stats", s.handleStats)
		r.Get("/xp", s.handleXPHistory)
		r.Get("/badges", s.handleBadges)
		r.Get("/badges/near", s.handleNearBadges)
		r.Get("/challenges", s.handleListChallenges)
		r.Post("/challenges", s.handleCreateChallenge)
		r.Post("/challenges/generate", s.handleGenerateChallenges)
		r.Delete("/challenges/{id}", s.handleDeleteChallenge)
		r.Post("/sync", s.handleSync)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleHealth reports liveness. With a checker attached it also reports the
// individual check results and degrades the status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
		return
	}
	status := "ok"
	code := http.StatusOK
	if !s.health.IsHealthy() {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

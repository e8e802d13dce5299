package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gitquest-dev/gitquest/internal/app/progression"
	"github.com/gitquest-dev/gitquest/internal/domain"
)

// ─── Level & stats ──────────────────────────────────────────────────────────

// handleLevel returns the user's level view. A user with no recorded stats
// reads as a fresh level-1 user rather than a 404 — the engine has no signup
// step, the first sync creates the row.
func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	stats, err := s.loadStats(w, r)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, progression.LevelInfoForXP(stats.TotalXP))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.loadStats(w, r)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleXPHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := s.db.ListXPEvents(userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"events":  events,
	})
}

// ─── Badges ─────────────────────────────────────────────────────────────────

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	stats, err := s.loadStats(w, r)
	if err != nil {
		return
	}
	badges, err := s.badges.WithProgress(stats.UserID, progression.EvalContext(stats))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": stats.UserID,
		"badges":  badges,
	})
}

func (s *Server) handleNearBadges(w http.ResponseWriter, r *http.Request) {
	stats, err := s.loadStats(w, r)
	if err != nil {
		return
	}

	threshold := s.nearCompletionPct
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "threshold must be 0-100")
			return
		}
		threshold = n
	}

	near, err := s.badges.Near(stats.UserID, progression.EvalContext(stats), threshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   stats.UserID,
		"threshold": threshold,
		"badges":    near,
	})
}

// ─── Challenges ─────────────────────────────────────────────────────────────

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	var (
		challenges []domain.Challenge
		err        error
	)
	if r.URL.Query().Get("status") == "active" {
		challenges, err = s.challenges.Active(userID, time.Now())
	} else {
		challenges, err = s.challenges.List(userID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":    userID,
		"challenges": challenges,
	})
}

type createChallengeRequest struct {
	Type        domain.ChallengeType `json:"type"`
	Metric      domain.TargetMetric  `json:"metric"`
	TargetValue int64                `json:"target_value"`
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	var req createChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := s.startStats(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ch, err := s.challenges.Create(userID, req.Type, req.Metric, req.TargetValue, start, time.Now())
	if err != nil {
		writeError(w, challengeErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

type generateChallengesRequest struct {
	Type domain.ChallengeType `json:"type"`
}

func (s *Server) handleGenerateChallenges(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	var req generateChallengesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now()
	hist, err := s.snapshots.History(userID, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	start, err := s.startStats(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	created, err := s.challenges.Generate(userID, req.Type, hist, start, now)
	if err != nil {
		writeError(w, challengeErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":    userID,
		"generated":  len(created),
		"challenges": created,
	})
}

func (s *Server) handleDeleteChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.challenges.Delete(id); err != nil {
		writeError(w, challengeErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// ─── Sync ───────────────────────────────────────────────────────────────────

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	var activity domain.SyncActivity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.sync.Apply(userID, activity, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// loadStats fetches the user's stats row, substituting a zero-valued row for
// users the engine has never seen. Writes the error response itself, so a
// non-nil error just means "stop".
func (s *Server) loadStats(w http.ResponseWriter, r *http.Request) (domain.UserStats, error) {
	userID := chi.URLParam(r, "user")
	stats, err := s.db.GetUserStats(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return domain.UserStats{}, err
	}
	if stats == nil {
		return domain.UserStats{UserID: userID, CurrentLevel: 1}, nil
	}
	return *stats, nil
}

// startStats reads the latest snapshot's counters as a challenge baseline.
// nil when the user has never synced.
func (s *Server) startStats(userID string) (*domain.ActivityCounters, error) {
	snap, err := s.db.LatestSnapshot(userID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}
	counters := snap.Counters
	return &counters, nil
}

func challengeErrStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrChallengeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateChallenge):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidChallengeType),
		errors.Is(err, domain.ErrInvalidTargetMetric),
		errors.Is(err, domain.ErrInvalidTargetValue):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gitquest-dev/gitquest/internal/app/progression"
	"github.com/gitquest-dev/gitquest/internal/domain"
	"github.com/gitquest-dev/gitquest/internal/infra/sqlite"
)

func newTestServer(t *testing.T) (*Server, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	snapshots := progression.NewSnapshotService(db)
	challenges := progression.NewChallengeService(db, progression.DefaultTargetFloors())
	badges := progression.NewBadgeService(db)
	syncSvc := progression.NewSyncService(db, snapshots, challenges, badges)

	return NewServer(db, snapshots, challenges, badges, syncSvc), db
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

// ─── Health ─────────────────────────────────────────────────────────────────

func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

// ─── Level & Stats ──────────────────────────────────────────────────────────

func TestAPI_LevelFreshUser(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, "GET", "/api/users/alice/level", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var info domain.LevelInfo
	json.NewDecoder(w.Body).Decode(&info)
	if info.Level != 1 || info.TotalXP != 0 {
		t.Errorf("fresh user level = %+v, want level 1 / 0 XP", info)
	}
}

func TestAPI_StatsAfterSync(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"counters":{"commits":5,"prs":1}}`
	w := do(t, srv, "POST", "/api/users/alice/sync", body)
	if w.Code != http.StatusOK {
		t.Fatalf("sync status = %d: %s", w.Code, w.Body.String())
	}
	var result progression.SyncResult
	json.NewDecoder(w.Body).Decode(&result)
	if result.XPAwarded != 90 {
		t.Errorf("xp = %d, want 90", result.XPAwarded)
	}

	w = do(t, srv, "GET", "/api/users/alice/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	var stats domain.UserStats
	json.NewDecoder(w.Body).Decode(&stats)
	if stats.TotalCommits != 5 || stats.TotalXP != 90 {
		t.Errorf("stats = %+v", stats)
	}
}

// ─── Badges ─────────────────────────────────────────────────────────────────

func TestAPI_BadgesAfterSync(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, "POST", "/api/users/alice/sync", `{"counters":{"commits":1}}`)

	w := do(t, srv, "GET", "/api/users/alice/badges", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Badges []domain.BadgeWithProgress `json:"badges"`
	}
	json.NewDecoder(w.Body).Decode(&body)

	earned := false
	for _, b := range body.Badges {
		if b.Definition.ID == "first_commit" && b.Earned {
			earned = true
		}
	}
	if !earned {
		t.Error("first_commit should be earned after the first sync")
	}
}

func TestAPI_NearBadgesThresholdValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, "GET", "/api/users/alice/badges/near?threshold=150", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// ─── Challenges ─────────────────────────────────────────────────────────────

func TestAPI_CreateChallenge(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"type":"daily","metric":"commits","target_value":5}`
	w := do(t, srv, "POST", "/api/users/alice/challenges", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var ch domain.Challenge
	json.NewDecoder(w.Body).Decode(&ch)
	if ch.RewardXP != 50 || ch.Status != domain.ChallengeActive {
		t.Errorf("challenge = %+v", ch)
	}

	// Duplicate (type, metric) conflicts.
	w = do(t, srv, "POST", "/api/users/alice/challenges", body)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestAPI_CreateChallengeValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{nope`, http.StatusBadRequest},
		{"bad type", `{"type":"monthly","metric":"commits","target_value":5}`, http.StatusBadRequest},
		{"bad metric", `{"type":"daily","metric":"stars","target_value":5}`, http.StatusBadRequest},
		{"zero target", `{"type":"daily","metric":"commits","target_value":0}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "POST", "/api/users/alice/challenges", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAPI_GenerateAndListChallenges(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, "POST", "/api/users/alice/challenges/generate", `{"type":"daily"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d: %s", w.Code, w.Body.String())
	}
	var gen struct {
		Generated  int                `json:"generated"`
		Challenges []domain.Challenge `json:"challenges"`
	}
	json.NewDecoder(w.Body).Decode(&gen)
	if gen.Generated != 4 {
		t.Errorf("generated = %d, want 4", gen.Generated)
	}

	w = do(t, srv, "GET", "/api/users/alice/challenges?status=active", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Challenges []domain.Challenge `json:"challenges"`
	}
	json.NewDecoder(w.Body).Decode(&list)
	if len(list.Challenges) != 4 {
		t.Errorf("active = %d, want 4", len(list.Challenges))
	}
}

func TestAPI_DeleteChallenge(t *testing.T) {
	srv, db := newTestServer(t)

	ch := domain.Challenge{
		ID: "ch-1", UserID: "alice",
		Type: domain.ChallengeDaily, Metric: domain.MetricCommits,
		TargetValue: 5, RewardXP: 50,
		StartDate: time.Now().UTC(), EndDate: time.Now().UTC().Add(24 * time.Hour),
		Status: domain.ChallengeActive,
	}
	if err := db.InsertChallenge(ch); err != nil {
		t.Fatalf("insert: %v", err)
	}

	w := do(t, srv, "DELETE", "/api/users/alice/challenges/ch-1", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	w = do(t, srv, "DELETE", "/api/users/alice/challenges/ch-1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("repeat delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// ─── CORS ───────────────────────────────────────────────────────────────────

func TestAPI_CORS(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, "GET", "/health", "")
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS: Access-Control-Allow-Origin should be *")
	}
}

// ─── Metrics gating ─────────────────────────────────────────────────────────

func TestAPI_MetricsDisabledByDefault(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, "GET", "/metrics", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	srv.EnableMetrics()
	w = do(t, srv, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Errorf("enabled status = %d, want %d", w.Code, http.StatusOK)
	}
}

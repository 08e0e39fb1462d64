package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/scorewatch/notify-service/internal/cache"
	"github.com/scorewatch/notify-service/internal/handlers"
	"github.com/scorewatch/notify-service/internal/kv"
	"github.com/scorewatch/notify-service/internal/registry"
	"github.com/scorewatch/notify-service/pkg/models"
)

// MockScoreSource serves scripted games or a scripted error
type MockScoreSource struct {
	games   []models.Game
	err     error
	fetches int
}

func (m *MockScoreSource) FetchScoreboard(ctx context.Context, league models.League, leaguePath string, date time.Time) ([]models.Game, error) {
	m.fetches++
	return m.games, m.err
}

// MockF1Source serves a scripted session
type MockF1Source struct {
	session *models.F1Session
	err     error
}

func (m *MockF1Source) LatestSession(ctx context.Context) (*models.F1Session, error) {
	return m.session, m.err
}

// MockGolfSource serves a scripted leaderboard
type MockGolfSource struct {
	board *models.GolfLeaderboard
	err   error
}

func (m *MockGolfSource) CurrentLeaderboard(ctx context.Context) (*models.GolfLeaderboard, error) {
	return m.board, m.err
}

type scoresFixture struct {
	router *chi.Mux
	cache  *cache.ScoreCache
	scores *MockScoreSource
	f1     *MockF1Source
	golf   *MockGolfSource
}

func newScoresFixture() *scoresFixture {
	f := &scoresFixture{
		cache:  cache.New(kv.NewMemory()),
		scores: &MockScoreSource{},
		f1:     &MockF1Source{},
		golf:   &MockGolfSource{},
	}
	h := handlers.NewScoresHandler(registry.New(), f.scores, f.f1, f.golf, f.cache)

	f.router = chi.NewRouter()
	f.router.Get("/api/v1/scores/{league}", h.GetScoreboard)
	f.router.Get("/api/v1/f1/latest", h.GetF1Latest)
	f.router.Get("/api/v1/golf/leaderboard", h.GetGolfLeaderboard)
	return f
}

func TestGetScoreboard_FetchesAndCaches(t *testing.T) {
	f := newScoresFixture()
	f.scores.games = []models.Game{{GameID: "nhl-401", League: models.LeagueNHL, Status: models.StatusLive}}

	rec, body := getJSON(t, f.router, "/api/v1/scores/nhl")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["count"].(float64) != 1 {
		t.Errorf("expected 1 game, got %v", body["count"])
	}
	if f.scores.fetches != 1 {
		t.Errorf("expected one upstream fetch, got %d", f.scores.fetches)
	}

	// Second request is served from cache
	rec, _ = getJSON(t, f.router, "/api/v1/scores/nhl")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.scores.fetches != 1 {
		t.Errorf("expected cache hit, got %d fetches", f.scores.fetches)
	}
}

func TestGetScoreboard_UpstreamFailureEmptyPayload(t *testing.T) {
	f := newScoresFixture()
	f.scores.err = errors.New("upstream down")

	rec, body := getJSON(t, f.router, "/api/v1/scores/nhl")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite upstream failure, got %d", rec.Code)
	}
	if body["count"].(float64) != 0 {
		t.Errorf("expected empty payload, got %v", body["count"])
	}
	games, ok := body["games"].([]interface{})
	if !ok || len(games) != 0 {
		t.Errorf("expected empty games array, got %v", body["games"])
	}
}

func TestGetScoreboard_UnknownLeague(t *testing.T) {
	f := newScoresFixture()

	rec, _ := getJSON(t, f.router, "/api/v1/scores/curling")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetF1Latest(t *testing.T) {
	f := newScoresFixture()
	f.f1.session = &models.F1Session{SessionKey: 9003, SessionName: "Race", EndTime: time.Now().Add(time.Hour)}

	rec, body := getJSON(t, f.router, "/api/v1/f1/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	session := body["session"].(map[string]interface{})
	if session["session_key"].(float64) != 9003 {
		t.Errorf("expected session 9003, got %v", session["session_key"])
	}
}

func TestGetF1Latest_UpstreamFailure(t *testing.T) {
	f := newScoresFixture()
	f.f1.err = errors.New("rate limited")

	rec, body := getJSON(t, f.router, "/api/v1/f1/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite upstream failure, got %d", rec.Code)
	}
	if body["session"] != nil {
		t.Errorf("expected null session, got %v", body["session"])
	}
}

func TestGetGolfLeaderboard(t *testing.T) {
	f := newScoresFixture()
	f.golf.board = &models.GolfLeaderboard{TournamentID: "401580329", Status: models.StatusLive}

	rec, body := getJSON(t, f.router, "/api/v1/golf/leaderboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	board := body["leaderboard"].(map[string]interface{})
	if board["tournament_id"] != "401580329" {
		t.Errorf("expected tournament 401580329, got %v", board["tournament_id"])
	}
}

func TestGetGolfLeaderboard_NoTournament(t *testing.T) {
	f := newScoresFixture()

	rec, body := getJSON(t, f.router, "/api/v1/golf/leaderboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["leaderboard"] != nil {
		t.Errorf("expected null leaderboard, got %v", body["leaderboard"])
	}
}

package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/scorewatch/notify-service/internal/registry"
	"github.com/scorewatch/notify-service/pkg/models"
)

// ScoreSource fetches a league's current games from an upstream API
type ScoreSource interface {
	FetchScoreboard(ctx context.Context, league models.League, leaguePath string, date time.Time) ([]models.Game, error)
}

// F1Source fetches the latest F1 session
type F1Source interface {
	LatestSession(ctx context.Context) (*models.F1Session, error)
}

// GolfSource fetches the current PGA leaderboard
type GolfSource interface {
	CurrentLeaderboard(ctx context.Context) (*models.GolfLeaderboard, error)
}

// BoardCache is the read-through cache in front of the upstream adapters
type BoardCache interface {
	ReadScoreboard(ctx context.Context, league models.League) ([]models.Game, error)
	WriteScoreboard(ctx context.Context, league models.League, games []models.Game) error
	ReadF1Session(ctx context.Context) (*models.F1Session, error)
	WriteF1Session(ctx context.Context, session *models.F1Session) error
	ReadGolfLeaderboard(ctx context.Context) (*models.GolfLeaderboard, error)
	WriteGolfLeaderboard(ctx context.Context, board *models.GolfLeaderboard) error
}

// ScoresHandler serves the live score endpoints the UI renders.
// Upstream failures degrade to empty payloads, never errors: one provider
// outage blanks one section of the page, not the whole request.
type ScoresHandler struct {
	registry *registry.Registry
	scores   ScoreSource
	f1       F1Source
	golf     GolfSource
	cache    BoardCache
}

// NewScoresHandler creates a scores handler
func NewScoresHandler(reg *registry.Registry, scores ScoreSource, f1 F1Source, golf GolfSource, cache BoardCache) *ScoresHandler {
	return &ScoresHandler{
		registry: reg,
		scores:   scores,
		f1:       f1,
		golf:     golf,
		cache:    cache,
	}
}

// GetScoreboard returns the current games for a league, cache first.
// GET /api/v1/scores/{league}
func (h *ScoresHandler) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	league := models.League(chi.URLParam(r, "league"))
	info, err := h.registry.Get(league)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown league", nil)
		return
	}

	games, err := h.cache.ReadScoreboard(ctx, league)
	if err != nil {
		log.Printf("[scores] cache read failed for %s: %v", league, err)
	}

	if games == nil {
		games, err = h.scores.FetchScoreboard(ctx, league, info.ESPNPath, time.Time{})
		if err != nil {
			log.Printf("[scores] upstream fetch failed for %s: %v", league, err)
			games = []models.Game{}
		} else if err := h.cache.WriteScoreboard(ctx, league, games); err != nil {
			log.Printf("[scores] cache write failed for %s: %v", league, err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"league": league,
		"games":  games,
		"count":  len(games),
	})
}

// GetF1Latest returns the latest F1 session with standings.
// GET /api/v1/f1/latest
func (h *ScoresHandler) GetF1Latest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	session, err := h.cache.ReadF1Session(ctx)
	if err != nil {
		log.Printf("[scores] f1 cache read failed: %v", err)
	}

	if session == nil {
		session, err = h.f1.LatestSession(ctx)
		if err != nil {
			log.Printf("[scores] f1 fetch failed: %v", err)
			session = nil
		} else if session != nil {
			if err := h.cache.WriteF1Session(ctx, session); err != nil {
				log.Printf("[scores] f1 cache write failed: %v", err)
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
	})
}

// GetGolfLeaderboard returns the current PGA tournament leaderboard.
// GET /api/v1/golf/leaderboard
func (h *ScoresHandler) GetGolfLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	board, err := h.cache.ReadGolfLeaderboard(ctx)
	if err != nil {
		log.Printf("[scores] golf cache read failed: %v", err)
	}

	if board == nil {
		board, err = h.golf.CurrentLeaderboard(ctx)
		if err != nil {
			log.Printf("[scores] golf fetch failed: %v", err)
			board = nil
		} else if board != nil {
			if err := h.cache.WriteGolfLeaderboard(ctx, board); err != nil {
				log.Printf("[scores] golf cache write failed: %v", err)
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"leaderboard": board,
	})
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/scorewatch/notify-service/internal/registry"
	"github.com/scorewatch/notify-service/pkg/models"
)

// GameIndexStore is the slice of the store the game read endpoints use
type GameIndexStore interface {
	GetActiveGames(ctx context.Context) ([]string, error)
	GetActiveGamesByLeague(ctx context.Context, league models.League) ([]string, error)
	GetGameState(ctx context.Context, gameID string) (*models.CachedGameState, error)
	GetGameSubscribers(ctx context.Context, gameID string) ([]string, error)
}

// GamesHandler serves the active-game and game-state read endpoints
type GamesHandler struct {
	store    GameIndexStore
	registry *registry.Registry
}

// NewGamesHandler creates a games handler
func NewGamesHandler(s GameIndexStore, reg *registry.Registry) *GamesHandler {
	return &GamesHandler{store: s, registry: reg}
}

// GetActiveGames returns the games with at least one subscriber.
// GET /api/v1/games/active?league={league}
func (h *GamesHandler) GetActiveGames(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		gameIDs []string
		err     error
	)

	league := models.League(r.URL.Query().Get("league"))
	if league != "" {
		if _, lookupErr := h.registry.Get(league); lookupErr != nil {
			respondError(w, http.StatusBadRequest, "unknown league", nil)
			return
		}
		gameIDs, err = h.store.GetActiveGamesByLeague(ctx, league)
	} else {
		gameIDs, err = h.store.GetActiveGames(ctx)
	}
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "failed to read active games", err)
		return
	}

	if gameIDs == nil {
		gameIDs = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"games": gameIDs,
		"count": len(gameIDs),
	})
}

// GetGameState returns the cached snapshot and subscriber count for a game.
// GET /api/v1/games/{game_id}/state
func (h *GamesHandler) GetGameState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	gameID := chi.URLParam(r, "game_id")
	if gameID == "" {
		respondError(w, http.StatusBadRequest, "game_id is required", nil)
		return
	}

	state, err := h.store.GetGameState(ctx, gameID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "failed to read game state", err)
		return
	}
	if state == nil {
		respondError(w, http.StatusNotFound, "game state not found", nil)
		return
	}

	subscribers, err := h.store.GetGameSubscribers(ctx, gameID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "failed to read subscribers", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"state":       state,
		"subscribers": len(subscribers),
	})
}

// GetLeagues returns the rendered league roster.
// GET /api/v1/leagues
func (h *GamesHandler) GetLeagues(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"leagues": h.registry.All(),
	})
}

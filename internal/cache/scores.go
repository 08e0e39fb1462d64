// Package cache is the read-through cache for upstream adapter payloads.
// Live data expires fast so scores stay fresh under upstream rate limits;
// completed-event data never changes, so it is kept for hours.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/scorewatch/notify-service/internal/kv"
	"github.com/scorewatch/notify-service/pkg/models"
)

// TTL tiers
const (
	LiveTTL     = 15 * time.Second
	UpcomingTTL = 60 * time.Second
	FinalTTL    = 6 * time.Hour
)

// ScoreCache stores adapter payloads in the key-value service
type ScoreCache struct {
	kv kv.Store
}

// New creates a score cache
func New(backend kv.Store) *ScoreCache {
	return &ScoreCache{kv: backend}
}

func scoreboardKey(league models.League) string { return "scores:" + string(league) }

const (
	f1Key   = "f1:latest"
	golfKey = "golf:leaderboard"
)

// WriteScoreboard caches a league's games. The TTL follows the most
// volatile game on the board: any live game forces the short tier, a board
// of finals keeps the long tier.
func (c *ScoreCache) WriteScoreboard(ctx context.Context, league models.League, games []models.Game) error {
	data, err := json.Marshal(games)
	if err != nil {
		return fmt.Errorf("marshaling scoreboard %s: %w", league, err)
	}
	return c.kv.Set(ctx, scoreboardKey(league), string(data), scoreboardTTL(games))
}

// ReadScoreboard returns the cached games for a league, or nil on a miss
func (c *ScoreCache) ReadScoreboard(ctx context.Context, league models.League) ([]models.Game, error) {
	data, err := c.kv.Get(ctx, scoreboardKey(league))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var games []models.Game
	if err := json.Unmarshal([]byte(data), &games); err != nil {
		return nil, fmt.Errorf("unmarshaling scoreboard %s: %w", league, err)
	}
	return games, nil
}

// WriteF1Session caches the latest F1 session
func (c *ScoreCache) WriteF1Session(ctx context.Context, session *models.F1Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshaling f1 session: %w", err)
	}

	ttl := LiveTTL
	if time.Now().After(session.EndTime) {
		ttl = FinalTTL
	}
	return c.kv.Set(ctx, f1Key, string(data), ttl)
}

// ReadF1Session returns the cached F1 session, or nil on a miss
func (c *ScoreCache) ReadF1Session(ctx context.Context) (*models.F1Session, error) {
	data, err := c.kv.Get(ctx, f1Key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var session models.F1Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("unmarshaling f1 session: %w", err)
	}
	return &session, nil
}

// WriteGolfLeaderboard caches the current PGA leaderboard
func (c *ScoreCache) WriteGolfLeaderboard(ctx context.Context, board *models.GolfLeaderboard) error {
	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("marshaling golf leaderboard: %w", err)
	}

	ttl := UpcomingTTL
	switch board.Status {
	case models.StatusLive:
		ttl = LiveTTL
	case models.StatusFinal:
		ttl = FinalTTL
	}
	return c.kv.Set(ctx, golfKey, string(data), ttl)
}

// ReadGolfLeaderboard returns the cached leaderboard, or nil on a miss
func (c *ScoreCache) ReadGolfLeaderboard(ctx context.Context) (*models.GolfLeaderboard, error) {
	data, err := c.kv.Get(ctx, golfKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var board models.GolfLeaderboard
	if err := json.Unmarshal([]byte(data), &board); err != nil {
		return nil, fmt.Errorf("unmarshaling golf leaderboard: %w", err)
	}
	return &board, nil
}

// scoreboardTTL picks the cache tier for a set of games
func scoreboardTTL(games []models.Game) time.Duration {
	if len(games) == 0 {
		return UpcomingTTL
	}

	allDone := true
	for _, g := range games {
		switch g.Status {
		case models.StatusLive:
			return LiveTTL
		case models.StatusFinal, models.StatusPostponed:
			// still all done
		default:
			allDone = false
		}
	}
	if allDone {
		return FinalTTL
	}
	return UpcomingTTL
}

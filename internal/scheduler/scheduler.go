// Package scheduler decides which leagues currently have subscribed games
// worth polling, so the poll loop can skip idle leagues entirely.
package scheduler

import (
	"context"
	"time"

	"github.com/scorewatch/notify-service/pkg/models"
)

// Polling window around a game's scheduled start. The pre-game buffer
// covers pre-kickoff notifications; the post-game buffer absorbs overtime,
// extra innings, and rain delays without sport-specific duration knowledge.
const (
	PreGameBuffer  = 30 * time.Minute
	PostGameBuffer = 4 * time.Hour
)

// GameIndex is the slice of the store the scheduler reads
type GameIndex interface {
	GetActiveGamesByLeague(ctx context.Context, league models.League) ([]string, error)
	GetGameMetadata(ctx context.Context, gameID string) (*models.GameMetadata, error)
}

// Scheduler is a stateless read-and-decide function over the store indices.
// Safe to call repeatedly and concurrently.
type Scheduler struct {
	index   GameIndex
	leagues []models.League
	now     func() time.Time
}

// New creates a scheduler over the notification-supported league roster
func New(index GameIndex, leagues []models.League) *Scheduler {
	return &Scheduler{
		index:   index,
		leagues: leagues,
		now:     time.Now,
	}
}

// NewWithClock creates a scheduler with an injected clock
func NewWithClock(index GameIndex, leagues []models.League, now func() time.Time) *Scheduler {
	s := New(index, leagues)
	s.now = now
	return s
}

// LeaguesNeedingPolling returns the leagues that have at least one active
// game inside its polling window right now. Order mirrors the roster;
// callers treat the result as a set.
func (s *Scheduler) LeaguesNeedingPolling(ctx context.Context) ([]models.League, error) {
	now := s.now()

	var needed []models.League
	for _, league := range s.leagues {
		needs, err := s.leagueNeedsPolling(ctx, league, now)
		if err != nil {
			return nil, err
		}
		if needs {
			needed = append(needed, league)
		}
	}
	return needed, nil
}

// leagueNeedsPolling scans a league's active games, short-circuiting on the
// first game inside its window. Games with no metadata or no recorded start
// time count as a match: legacy records didn't store start times, and
// skipping them risks missed notifications.
func (s *Scheduler) leagueNeedsPolling(ctx context.Context, league models.League, now time.Time) (bool, error) {
	gameIDs, err := s.index.GetActiveGamesByLeague(ctx, league)
	if err != nil {
		return false, err
	}

	for _, gameID := range gameIDs {
		meta, err := s.index.GetGameMetadata(ctx, gameID)
		if err != nil {
			return false, err
		}
		if meta == nil || meta.GameStartTime == nil {
			return true, nil
		}
		if InWindow(*meta.GameStartTime, now) {
			return true, nil
		}
	}
	return false, nil
}

// InWindow reports whether now falls inside the polling window around start
func InWindow(start, now time.Time) bool {
	windowOpen := start.Add(-PreGameBuffer)
	windowClose := start.Add(PostGameBuffer)
	return !now.Before(windowOpen) && !now.After(windowClose)
}

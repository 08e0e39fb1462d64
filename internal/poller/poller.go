// Package poller runs the periodic score-polling cycle: ask the scheduler
// which leagues have subscribed games in their polling window, fetch fresh
// scoreboards, diff against cached state, notify subscribers, broadcast,
// and clean up games that went final.
package poller

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/scorewatch/notify-service/internal/detector"
	"github.com/scorewatch/notify-service/internal/notifier"
	"github.com/scorewatch/notify-service/internal/registry"
	"github.com/scorewatch/notify-service/pkg/models"
)

const defaultInterval = time.Minute

// GameStore is the slice of the subscription store the poller uses
type GameStore interface {
	GetActiveGamesByLeague(ctx context.Context, league models.League) ([]string, error)
	GetGameState(ctx context.Context, gameID string) (*models.CachedGameState, error)
	SaveGameState(ctx context.Context, state *models.CachedGameState) error
	GetGameSubscribers(ctx context.Context, gameID string) ([]string, error)
	GetSubscription(ctx context.Context, id string) (*models.NotificationSubscription, error)
	RemoveGameSubscription(ctx context.Context, subscriptionID, gameID string) error
	CleanupFinishedGame(ctx context.Context, gameID string) error
}

// LeaguePicker decides which leagues need polling this cycle
type LeaguePicker interface {
	LeaguesNeedingPolling(ctx context.Context) ([]models.League, error)
}

// Scoreboard fetches a league's current games
type Scoreboard interface {
	FetchScoreboard(ctx context.Context, league models.League, leaguePath string, date time.Time) ([]models.Game, error)
}

// Notifier delivers a payload to one push endpoint
type Notifier interface {
	Send(ctx context.Context, sub models.PushSubscription, payload models.NotificationPayload) error
}

// Publisher emits score updates for live broadcast
type Publisher interface {
	PublishScoreUpdate(ctx context.Context, update models.ScoreUpdate) error
}

// ScoreCache persists fresh scoreboards for the HTTP read path
type ScoreCache interface {
	WriteScoreboard(ctx context.Context, league models.League, games []models.Game) error
}

// Poller drives the polling cycle
type Poller struct {
	registry  *registry.Registry
	picker    LeaguePicker
	scores    Scoreboard
	store     GameStore
	notifier  Notifier
	publisher Publisher
	cache     ScoreCache
	interval  time.Duration
	now       func() time.Time
}

// New creates a poller
func New(reg *registry.Registry, picker LeaguePicker, scores Scoreboard, store GameStore, n Notifier, pub Publisher, cache ScoreCache) *Poller {
	return &Poller{
		registry:  reg,
		picker:    picker,
		scores:    scores,
		store:     store,
		notifier:  n,
		publisher: pub,
		cache:     cache,
		interval:  defaultInterval,
		now:       time.Now,
	}
}

// SetInterval overrides the cycle interval
func (p *Poller) SetInterval(d time.Duration) {
	p.interval = d
}

// Run polls until ctx is cancelled
func (p *Poller) Run(ctx context.Context) {
	log.Printf("[poller] starting, interval=%s", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[poller] stopping")
			return
		case <-ticker.C:
			p.RunCycle(ctx)
		}
	}
}

// RunCycle performs one polling cycle
func (p *Poller) RunCycle(ctx context.Context) {
	leagues, err := p.picker.LeaguesNeedingPolling(ctx)
	if err != nil {
		log.Printf("[poller] error picking leagues: %v", err)
		return
	}
	if len(leagues) == 0 {
		return
	}

	for _, league := range leagues {
		p.pollLeague(ctx, league)
	}
}

// pollLeague fetches one league's scoreboard and processes its active
// games. Upstream failures degrade this league only.
func (p *Poller) pollLeague(ctx context.Context, league models.League) {
	info, err := p.registry.Get(league)
	if err != nil {
		log.Printf("[%s] %v", league, err)
		return
	}

	games, err := p.scores.FetchScoreboard(ctx, league, info.ESPNPath, time.Time{})
	if err != nil {
		log.Printf("[%s] error fetching scoreboard: %v", league, err)
		return
	}

	if err := p.cache.WriteScoreboard(ctx, league, games); err != nil {
		log.Printf("[%s] error caching scoreboard: %v", league, err)
	}

	activeIDs, err := p.store.GetActiveGamesByLeague(ctx, league)
	if err != nil {
		log.Printf("[%s] error reading active games: %v", league, err)
		return
	}

	byID := make(map[string]models.Game, len(games))
	for _, g := range games {
		byID[g.GameID] = g
	}

	for _, gameID := range activeIDs {
		game, ok := byID[gameID]
		if !ok {
			// Not on today's board; nothing to diff against
			continue
		}
		p.processGame(ctx, game)
	}
}

// processGame diffs one game against its cached snapshot, fans out the
// resulting events, and persists the fresh state
func (p *Poller) processGame(ctx context.Context, game models.Game) {
	prev, err := p.store.GetGameState(ctx, game.GameID)
	if err != nil {
		log.Printf("[%s] error reading state for game %s: %v", game.League, game.GameID, err)
		return
	}

	curr := models.GameStateFromGame(game)
	events := detector.Detect(prev, curr, p.now())

	if len(events) > 0 {
		p.notifySubscribers(ctx, game, events)

		update := models.ScoreUpdate{Game: game, Events: events}
		if err := p.publisher.PublishScoreUpdate(ctx, update); err != nil {
			log.Printf("[%s] error publishing update for game %s: %v", game.League, game.GameID, err)
		}
	}

	if err := p.store.SaveGameState(ctx, &curr); err != nil {
		log.Printf("[%s] error saving state for game %s: %v", game.League, game.GameID, err)
		return
	}

	if curr.Status == models.StatusFinal {
		if err := p.store.CleanupFinishedGame(ctx, game.GameID); err != nil {
			log.Printf("[%s] error cleaning up game %s: %v", game.League, game.GameID, err)
		}
	}
}

// notifySubscribers pushes each detected event to every subscriber that
// opted in to its kind
func (p *Poller) notifySubscribers(ctx context.Context, game models.Game, events []models.GameEvent) {
	subscriberIDs, err := p.store.GetGameSubscribers(ctx, game.GameID)
	if err != nil {
		log.Printf("[%s] error reading subscribers for game %s: %v", game.League, game.GameID, err)
		return
	}

	for _, subscriptionID := range subscriberIDs {
		sub, err := p.store.GetSubscription(ctx, subscriptionID)
		if err != nil {
			log.Printf("[%s] error loading subscription %s: %v", game.League, subscriptionID, err)
			continue
		}
		if sub == nil {
			continue
		}

		var prefs *models.GameSubscription
		for i := range sub.SubscribedGames {
			if sub.SubscribedGames[i].GameID == game.GameID {
				prefs = &sub.SubscribedGames[i]
				break
			}
		}
		if prefs == nil {
			continue
		}

		for _, event := range events {
			if !prefs.WantsEvent(event.Kind) {
				continue
			}

			payload := notifier.FormatEvent(event)
			if err := p.notifier.Send(ctx, sub.PushSubscription, payload); err != nil {
				if errors.Is(err, notifier.ErrSubscriptionGone) {
					log.Printf("[%s] pruning gone subscription %s", game.League, subscriptionID)
					if err := p.store.RemoveGameSubscription(ctx, subscriptionID, game.GameID); err != nil {
						log.Printf("[%s] error pruning subscription %s: %v", game.League, subscriptionID, err)
					}
					break
				}
				log.Printf("[%s] error notifying %s: %v", game.League, subscriptionID, err)
			}
		}
	}
}

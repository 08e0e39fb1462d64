// Package store is the durable registry of who wants notifications for
// which games, plus the derived indices the polling scheduler reads.
//
// All state lives in the shared key-value service. Multi-key operations are
// ordered sequences of individually-atomic, idempotent steps: a crash
// mid-sequence can leave an index briefly inconsistent with the
// authoritative subscription record, and retrying the whole operation is
// the documented recovery.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/scorewatch/notify-service/internal/kv"
	"github.com/scorewatch/notify-service/pkg/models"
)

// ErrSubscriptionNotFound is returned when a subscription ID does not resolve
var ErrSubscriptionNotFound = errors.New("store: subscription not found")

// Retention windows. Subscriptions expire after 30 days untouched; game
// state and metadata outlive any legitimate game at 6 hours. The global
// active-games index is re-derivable, so it carries a short TTL of its own.
const (
	SubscriptionTTL = 30 * 24 * time.Hour
	GameStateTTL    = 6 * time.Hour
	GameMetadataTTL = GameStateTTL
	ActiveGamesTTL  = time.Hour
)

const activeGamesKey = "active_games"

func subscriptionKey(id string) string        { return "sub:" + id }
func gameStateKey(gameID string) string       { return "game:" + gameID }
func gameSubscribersKey(gameID string) string { return "game:" + gameID + ":subs" }
func gameMetadataKey(gameID string) string    { return "game:" + gameID + ":meta" }
func activeGamesLeagueKey(league models.League) string {
	return activeGamesKey + ":" + string(league)
}

// Store is the subscription registry over a key-value backend
type Store struct {
	kv      kv.Store
	leagues []models.League // notification-supported roster, for index cleanup
	now     func() time.Time
}

// New creates a store. leagues is the notification-supported roster; it is
// only consulted when cleaning up a game whose metadata has expired.
func New(backend kv.Store, leagues []models.League) *Store {
	return &Store{
		kv:      backend,
		leagues: leagues,
		now:     time.Now,
	}
}

// SaveSubscription upserts a subscription and resets its retention window
func (s *Store) SaveSubscription(ctx context.Context, sub *models.NotificationSubscription) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshaling subscription %s: %w", sub.ID, err)
	}
	return s.kv.Set(ctx, subscriptionKey(sub.ID), string(data), SubscriptionTTL)
}

// GetSubscription returns the subscription, or nil when missing or expired
func (s *Store) GetSubscription(ctx context.Context, id string) (*models.NotificationSubscription, error) {
	data, err := s.kv.Get(ctx, subscriptionKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var sub models.NotificationSubscription
	if err := json.Unmarshal([]byte(data), &sub); err != nil {
		return nil, fmt.Errorf("unmarshaling subscription %s: %w", id, err)
	}
	return &sub, nil
}

// UpdateSubscriptionEndpoint would rotate the push endpoint on an existing
// subscription. Browser endpoint rotation is not implemented: this is a
// deliberate no-op, and clients are expected to re-subscribe when their
// endpoint changes.
func (s *Store) UpdateSubscriptionEndpoint(ctx context.Context, id string, endpoint models.PushSubscription) error {
	return nil
}

// AddGameSubscription registers a subscription's interest in a game.
// Replace-on-match: a second call for the same game overwrites the prior
// entry rather than appending. Fails with ErrSubscriptionNotFound before
// touching any index.
func (s *Store) AddGameSubscription(ctx context.Context, subscriptionID string, game models.GameSubscription) error {
	sub, err := s.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, subscriptionID)
	}

	replaced := false
	for i, existing := range sub.SubscribedGames {
		if existing.GameID == game.GameID {
			sub.SubscribedGames[i] = game
			replaced = true
			break
		}
	}
	if !replaced {
		sub.SubscribedGames = append(sub.SubscribedGames, game)
	}
	sub.LastSeen = s.now()

	if err := s.SaveSubscription(ctx, sub); err != nil {
		return err
	}

	// Index maintenance, ordered after the authoritative write. Each step
	// is idempotent; on partial failure the caller retries the whole call.
	if err := s.kv.SAdd(ctx, gameSubscribersKey(game.GameID), subscriptionID); err != nil {
		return err
	}
	if err := s.kv.SAdd(ctx, activeGamesKey, game.GameID); err != nil {
		return err
	}
	if err := s.kv.Expire(ctx, activeGamesKey, ActiveGamesTTL); err != nil {
		return err
	}
	if err := s.kv.SAdd(ctx, activeGamesLeagueKey(game.League), game.GameID); err != nil {
		return err
	}

	meta := models.GameMetadata{
		GameID:        game.GameID,
		League:        game.League,
		GameStartTime: game.GameStartTime,
	}
	return s.saveGameMetadata(ctx, meta)
}

// RemoveGameSubscription drops one game from a subscription. When the last
// subscriber for the game goes away, the game is removed from the active
// indices and its cached state is deleted eagerly.
func (s *Store) RemoveGameSubscription(ctx context.Context, subscriptionID, gameID string) error {
	sub, err := s.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, subscriptionID)
	}

	var league models.League
	kept := sub.SubscribedGames[:0]
	for _, existing := range sub.SubscribedGames {
		if existing.GameID == gameID {
			league = existing.League
			continue
		}
		kept = append(kept, existing)
	}
	sub.SubscribedGames = kept
	sub.LastSeen = s.now()

	if err := s.SaveSubscription(ctx, sub); err != nil {
		return err
	}

	if err := s.kv.SRem(ctx, gameSubscribersKey(gameID), subscriptionID); err != nil {
		return err
	}

	remaining, err := s.kv.SCard(ctx, gameSubscribersKey(gameID))
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}

	// Last subscriber gone: drop the game from the indices and forget its
	// cached state.
	if err := s.kv.SRem(ctx, activeGamesKey, gameID); err != nil {
		return err
	}
	if league != "" {
		if err := s.kv.SRem(ctx, activeGamesLeagueKey(league), gameID); err != nil {
			return err
		}
	}
	return s.kv.Del(ctx, gameStateKey(gameID))
}

// CleanupFinishedGame removes every trace of a game: each subscriber's list
// entry, the subscriber set, cached state, metadata, and both active
// indices. Idempotent; calling it on an already-clean game is a no-op.
func (s *Store) CleanupFinishedGame(ctx context.Context, gameID string) error {
	meta, err := s.GetGameMetadata(ctx, gameID)
	if err != nil {
		return err
	}

	subscribers, err := s.kv.SMembers(ctx, gameSubscribersKey(gameID))
	if err != nil {
		return err
	}
	for _, subscriptionID := range subscribers {
		if err := s.RemoveGameSubscription(ctx, subscriptionID, gameID); err != nil {
			// The subscription may have expired on its own; the remaining
			// keys are still swept below.
			if errors.Is(err, ErrSubscriptionNotFound) {
				continue
			}
			return err
		}
	}

	if err := s.kv.Del(ctx, gameSubscribersKey(gameID), gameStateKey(gameID), gameMetadataKey(gameID)); err != nil {
		return err
	}
	if err := s.kv.SRem(ctx, activeGamesKey, gameID); err != nil {
		return err
	}

	if meta != nil {
		return s.kv.SRem(ctx, activeGamesLeagueKey(meta.League), gameID)
	}
	// Metadata already expired: sweep every league index
	for _, league := range s.leagues {
		if err := s.kv.SRem(ctx, activeGamesLeagueKey(league), gameID); err != nil {
			return err
		}
	}
	return nil
}

// GetGameSubscribers returns the subscription IDs subscribed to a game
func (s *Store) GetGameSubscribers(ctx context.Context, gameID string) ([]string, error) {
	return s.kv.SMembers(ctx, gameSubscribersKey(gameID))
}

// GetActiveGames returns every game ID with at least one subscriber
func (s *Store) GetActiveGames(ctx context.Context) ([]string, error) {
	return s.kv.SMembers(ctx, activeGamesKey)
}

// GetActiveGamesByLeague returns the active game IDs for one league
func (s *Store) GetActiveGamesByLeague(ctx context.Context, league models.League) ([]string, error) {
	return s.kv.SMembers(ctx, activeGamesLeagueKey(league))
}

// GetGameMetadata returns the slim per-game record, or nil when missing
func (s *Store) GetGameMetadata(ctx context.Context, gameID string) (*models.GameMetadata, error) {
	data, err := s.kv.Get(ctx, gameMetadataKey(gameID))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var meta models.GameMetadata
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata for game %s: %w", gameID, err)
	}
	return &meta, nil
}

// SaveGameState writes the per-game snapshot, refreshing its TTL
func (s *Store) SaveGameState(ctx context.Context, state *models.CachedGameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling state for game %s: %w", state.GameID, err)
	}
	return s.kv.Set(ctx, gameStateKey(state.GameID), string(data), GameStateTTL)
}

// GetGameState returns the last-seen snapshot, or nil when missing
func (s *Store) GetGameState(ctx context.Context, gameID string) (*models.CachedGameState, error) {
	data, err := s.kv.Get(ctx, gameStateKey(gameID))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var state models.CachedGameState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("unmarshaling state for game %s: %w", gameID, err)
	}
	return &state, nil
}

func (s *Store) saveGameMetadata(ctx context.Context, meta models.GameMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata for game %s: %w", meta.GameID, err)
	}
	return s.kv.Set(ctx, gameMetadataKey(meta.GameID), string(data), GameMetadataTTL)
}

package models

import "time"

// League identifies a supported league by its short key
type League string

const (
	LeagueNHL   League = "nhl"
	LeagueNFL   League = "nfl"
	LeagueNBA   League = "nba"
	LeagueMLB   League = "mlb"
	LeagueMLS   League = "mls"
	LeagueEPL   League = "epl"
	LeagueNCAAM League = "ncaam"
)

// Event kinds a subscriber can opt in or out of
const (
	EventGameStart    = "game_start"
	EventScoreChange  = "score_change"
	EventPeriodChange = "period_change"
	EventGameEnd      = "game_end"
)

// DefaultEventPreferences returns the event preferences applied when a
// subscriber doesn't specify their own. Merged with user overrides at
// subscription time.
func DefaultEventPreferences() map[string]bool {
	return map[string]bool{
		EventGameStart:    true,
		EventScoreChange:  true,
		EventPeriodChange: false,
		EventGameEnd:      true,
	}
}

// PushSubscription is the browser-issued delivery endpoint descriptor.
// Treated as an opaque value blob by the store; only the notifier reads it.
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// GameSubscription is a user's opt-in to notifications for one game
type GameSubscription struct {
	GameID        string          `json:"game_id"`
	League        League          `json:"league"`
	HomeTeam      string          `json:"home_team"`
	AwayTeam      string          `json:"away_team"`
	GameStartTime *time.Time      `json:"game_start_time,omitempty"`
	Events        map[string]bool `json:"events"`
	SubscribedAt  time.Time       `json:"subscribed_at"`
}

// WantsEvent reports whether the subscriber opted in to an event kind.
// Unknown kinds default to off.
func (g GameSubscription) WantsEvent(kind string) bool {
	return g.Events[kind]
}

// NotificationSubscription is the durable registry entry for one push
// endpoint. At most one GameSubscription per game ID (replace-on-match).
type NotificationSubscription struct {
	ID               string             `json:"id"`
	PushSubscription PushSubscription   `json:"push_subscription"`
	SubscribedGames  []GameSubscription `json:"subscribed_games"`
	CreatedAt        time.Time          `json:"created_at"`
	LastSeen         time.Time          `json:"last_seen"`
}

// GameMetadata is the slim per-game record the scheduler reads to compute
// polling eligibility without loading full subscriptions
type GameMetadata struct {
	GameID        string     `json:"game_id"`
	League        League     `json:"league"`
	GameStartTime *time.Time `json:"game_start_time,omitempty"`
}

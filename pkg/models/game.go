package models

import "time"

// GameStatus represents the current state of a game
type GameStatus string

const (
	StatusUpcoming  GameStatus = "upcoming"
	StatusLive      GameStatus = "live"
	StatusFinal     GameStatus = "final"
	StatusPostponed GameStatus = "postponed"
)

// Game is the universal display model for any league
type Game struct {
	GameID        string     `json:"game_id"`
	League        League     `json:"league"`
	Status        GameStatus `json:"status"`
	HomeTeam      string     `json:"home_team"`
	HomeTeamAbbr  string     `json:"home_team_abbr"`
	AwayTeam      string     `json:"away_team"`
	AwayTeamAbbr  string     `json:"away_team_abbr"`
	HomeScore     int        `json:"home_score"`
	AwayScore     int        `json:"away_score"`
	Period        int        `json:"period"`
	PeriodLabel   string     `json:"period_label,omitempty"`
	TimeRemaining string     `json:"time_remaining,omitempty"`
	StartTime     time.Time  `json:"start_time"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CachedGameState is the per-game snapshot used to detect deltas between
// polls. Keyed by game ID, TTL-bounded in the store.
type CachedGameState struct {
	GameID    string     `json:"game_id"`
	League    League     `json:"league"`
	Status    GameStatus `json:"status"`
	HomeTeam  string     `json:"home_team"`
	AwayTeam  string     `json:"away_team"`
	HomeScore int        `json:"home_score"`
	AwayScore int        `json:"away_score"`
	Period    int        `json:"period"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// GameStateFromGame snapshots the delta-relevant fields of a Game
func GameStateFromGame(g Game) CachedGameState {
	return CachedGameState{
		GameID:    g.GameID,
		League:    g.League,
		Status:    g.Status,
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Period:    g.Period,
		UpdatedAt: g.UpdatedAt,
	}
}

// GameEvent is one detected state change for a game
type GameEvent struct {
	Kind      string     `json:"kind"`
	GameID    string     `json:"game_id"`
	League    League     `json:"league"`
	HomeTeam  string     `json:"home_team"`
	AwayTeam  string     `json:"away_team"`
	HomeScore int        `json:"home_score"`
	AwayScore int        `json:"away_score"`
	Status    GameStatus `json:"status"`
	Period    int        `json:"period"`
	Timestamp time.Time  `json:"timestamp"`
}

// NotificationPayload is the JSON body delivered through web push
type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag,omitempty"`
	URL   string `json:"url,omitempty"`
}

package models

import "time"

// F1Session is a normalized OpenF1 session with driver standings
type F1Session struct {
	SessionKey  int          `json:"session_key"`
	MeetingName string       `json:"meeting_name"`
	SessionName string       `json:"session_name"`
	CircuitName string       `json:"circuit_name"`
	CountryName string       `json:"country_name"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
	Standings   []F1Standing `json:"standings"`
}

// F1Standing is one driver's position within a session
type F1Standing struct {
	Position     int    `json:"position"`
	DriverNumber int    `json:"driver_number"`
	DriverName   string `json:"driver_name"`
	NameAcronym  string `json:"name_acronym"`
	TeamName     string `json:"team_name"`
}

// GolfLeaderboard is a normalized PGA tournament leaderboard
type GolfLeaderboard struct {
	TournamentID   string       `json:"tournament_id"`
	TournamentName string       `json:"tournament_name"`
	Status         GameStatus   `json:"status"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        time.Time    `json:"end_date"`
	Players        []GolfPlayer `json:"players"`
}

// GolfPlayer is one leaderboard row
type GolfPlayer struct {
	Position  int    `json:"position"`
	Name      string `json:"name"`
	Score     string `json:"score"` // display score relative to par, e.g. "-12", "E"
	Today     string `json:"today,omitempty"`
	Thru      string `json:"thru,omitempty"`
	CountryID string `json:"country_id,omitempty"`
}

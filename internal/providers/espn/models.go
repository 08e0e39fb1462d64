package espn

import (
	"strings"
	"time"
)

// Scoreboard response shapes, trimmed to the fields the service reads

type scoreboardResponse struct {
	Events []event `json:"events"`
}

type event struct {
	ID           string        `json:"id"`
	Date         FlexTime      `json:"date"`
	Name         string        `json:"name"`
	ShortName    string        `json:"shortName"`
	Competitions []competition `json:"competitions"`
	Status       status        `json:"status"`
}

type competition struct {
	ID          string       `json:"id"`
	Date        FlexTime     `json:"date"`
	Competitors []competitor `json:"competitors"`
	Status      status       `json:"status"`
}

type competitor struct {
	ID       string `json:"id"`
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     team   `json:"team"`
}

type team struct {
	ID           string `json:"id"`
	Location     string `json:"location"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
}

type status struct {
	Clock        float64    `json:"clock"`
	DisplayClock string     `json:"displayClock"`
	Period       int        `json:"period"`
	Type         statusType `json:"type"`
}

type statusType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"` // "pre", "in", "post"
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
}

// FlexTime unmarshals both full RFC3339 timestamps and the minute-precision
// "2006-01-02T15:04Z" strings some ESPN endpoints return
type FlexTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (t *FlexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04Z07:00",
	}

	var parseErr error
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		parseErr = err
	}
	return parseErr
}

// Package pga fetches the current PGA Tour leaderboard from the ESPN golf
// endpoint.
package pga

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/scorewatch/notify-service/pkg/models"
)

const defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/golf/pga"

// Client handles PGA leaderboard requests
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a PGA client
func New() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewWithBaseURL creates a client against a non-default base URL (tests)
func NewWithBaseURL(baseURL string) *Client {
	c := New()
	c.baseURL = baseURL
	return c
}

type leaderboardResponse struct {
	Events []tournament `json:"events"`
}

type tournament struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Date         time.Time         `json:"date"`
	EndDate      time.Time         `json:"endDate"`
	Status       tournamentStatus  `json:"status"`
	Competitions []golfCompetition `json:"competitions"`
}

type tournamentStatus struct {
	Type struct {
		State     string `json:"state"`
		Completed bool   `json:"completed"`
	} `json:"type"`
}

type golfCompetition struct {
	Competitors []golfCompetitor `json:"competitors"`
}

type golfCompetitor struct {
	SortOrder int `json:"sortOrder"`
	Athlete   struct {
		DisplayName string `json:"displayName"`
		Flag        struct {
			Alt string `json:"alt"`
		} `json:"flag"`
	} `json:"athlete"`
	Score struct {
		DisplayValue string `json:"displayValue"`
	} `json:"score"`
	Status struct {
		Thru         int    `json:"thru"`
		DisplayValue string `json:"displayValue"`
		Position     struct {
			DisplayName string `json:"displayName"`
		} `json:"position"`
	} `json:"status"`
}

// CurrentLeaderboard fetches the in-progress or most recent tournament
// leaderboard. Returns nil when no tournament is listed.
func (c *Client) CurrentLeaderboard(ctx context.Context) (*models.GolfLeaderboard, error) {
	url := c.baseURL + "/leaderboard"

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("PGA API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var parsed leaderboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(parsed.Events) == 0 {
		return nil, nil
	}
	return mapTournament(parsed.Events[0]), nil
}

func mapTournament(t tournament) *models.GolfLeaderboard {
	board := &models.GolfLeaderboard{
		TournamentID:   t.ID,
		TournamentName: t.Name,
		Status:         mapState(t.Status.Type.State),
		StartDate:      t.Date,
		EndDate:        t.EndDate,
	}

	if len(t.Competitions) == 0 {
		return board
	}

	for _, comp := range t.Competitions[0].Competitors {
		pos := comp.SortOrder
		if pos == 0 {
			pos, _ = strconv.Atoi(comp.Status.Position.DisplayName)
		}
		thru := ""
		if comp.Status.Thru > 0 {
			thru = strconv.Itoa(comp.Status.Thru)
		}
		board.Players = append(board.Players, models.GolfPlayer{
			Position:  pos,
			Name:      comp.Athlete.DisplayName,
			Score:     comp.Score.DisplayValue,
			Today:     comp.Status.DisplayValue,
			Thru:      thru,
			CountryID: comp.Athlete.Flag.Alt,
		})
	}
	return board
}

func mapState(state string) models.GameStatus {
	switch state {
	case "pre":
		return models.StatusUpcoming
	case "in":
		return models.StatusLive
	case "post":
		return models.StatusFinal
	default:
		return models.StatusUpcoming
	}
}

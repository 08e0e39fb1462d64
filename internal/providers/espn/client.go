// Package espn fetches scoreboards from ESPN's public site API and maps
// them into the shared game model.
package espn

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

const defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports"

// Client handles ESPN API requests
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// New creates an ESPN API client
func New() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent: "Mozilla/5.0 (compatible; ScoreWatchBot/1.0)",
	}
}

// NewWithBaseURL creates a client against a non-default base URL (tests)
func NewWithBaseURL(baseURL string) *Client {
	c := New()
	c.baseURL = baseURL
	return c
}

// FetchScoreboard fetches the scoreboard for a league. leaguePath is the
// "{sport}/{league}" URL segment, e.g. "hockey/nhl". A zero date fetches
// whatever ESPN considers "today".
func (c *Client) FetchScoreboard(ctx context.Context, league models.League, leaguePath string, date time.Time) ([]models.Game, error) {
	url := fmt.Sprintf("%s/%s/scoreboard", c.baseURL, leaguePath)
	if !date.IsZero() {
		url = fmt.Sprintf("%s?dates=%s", url, date.Format("20060102"))
	}

	var resp scoreboardResponse
	if err := c.fetch(ctx, url, &resp); err != nil {
		return nil, err
	}

	games := make([]models.Game, 0, len(resp.Events))
	for _, ev := range resp.Events {
		game, ok := parseEvent(league, ev)
		if !ok {
			continue
		}
		games = append(games, game)
	}
	return games, nil
}

// fetch makes a GET request and decodes the JSON response into out
func (c *Client) fetch(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ESPN API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// parseEvent maps one scoreboard event onto the shared game model. Events
// without two competitors are skipped.
func parseEvent(league models.League, ev event) (models.Game, bool) {
	if len(ev.Competitions) == 0 {
		return models.Game{}, false
	}
	comp := ev.Competitions[0]
	if len(comp.Competitors) < 2 {
		return models.Game{}, false
	}

	home, away := comp.Competitors[0], comp.Competitors[1]
	if home.HomeAway != "home" {
		home, away = away, home
	}

	startTime := comp.Date.Time
	if startTime.IsZero() {
		startTime = ev.Date.Time
	}

	return models.Game{
		GameID:        ev.ID,
		League:        league,
		Status:        mapStatus(ev.Status.Type),
		HomeTeam:      home.Team.DisplayName,
		HomeTeamAbbr:  home.Team.Abbreviation,
		AwayTeam:      away.Team.DisplayName,
		AwayTeamAbbr:  away.Team.Abbreviation,
		HomeScore:     parseScore(home.Score),
		AwayScore:     parseScore(away.Score),
		Period:        ev.Status.Period,
		PeriodLabel:   ev.Status.Type.Description,
		TimeRemaining: ev.Status.DisplayClock,
		StartTime:     startTime,
		UpdatedAt:     time.Now().UTC(),
	}, true
}

// mapStatus translates ESPN's status state into the universal game status
func mapStatus(st statusType) models.GameStatus {
	switch st.State {
	case "pre":
		return models.StatusUpcoming
	case "in":
		return models.StatusLive
	case "post":
		if st.Name == "STATUS_POSTPONED" || st.Name == "STATUS_CANCELED" {
			return models.StatusPostponed
		}
		return models.StatusFinal
	default:
		return models.StatusUpcoming
	}
}

// parseScore converts ESPN's string scores; absent or malformed scores
// read as zero
func parseScore(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

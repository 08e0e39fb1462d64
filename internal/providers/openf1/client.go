// Package openf1 fetches Formula 1 session data from the OpenF1 API.
package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/scorewatch/notify-service/pkg/models"
)

const defaultBaseURL = "https://api.openf1.org/v1"

// Client handles OpenF1 API requests
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// New creates an OpenF1 API client
func New() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

// NewWithBaseURL creates a client against a non-default base URL (tests)
func NewWithBaseURL(baseURL string) *Client {
	c := New()
	c.baseURL = baseURL
	return c
}

type session struct {
	SessionKey       int       `json:"session_key"`
	SessionName      string    `json:"session_name"`
	SessionType      string    `json:"session_type"`
	MeetingKey       int       `json:"meeting_key"`
	CircuitShortName string    `json:"circuit_short_name"`
	CountryName      string    `json:"country_name"`
	DateStart        time.Time `json:"date_start"`
	DateEnd          time.Time `json:"date_end"`
}

type driver struct {
	DriverNumber int    `json:"driver_number"`
	FullName     string `json:"full_name"`
	NameAcronym  string `json:"name_acronym"`
	TeamName     string `json:"team_name"`
}

type position struct {
	DriverNumber int       `json:"driver_number"`
	Position     int       `json:"position"`
	Date         time.Time `json:"date"`
}

// LatestSession returns the most recently started session of the year with
// current driver standings. Within a race weekend the Race session wins
// over practice and qualifying once it has started.
func (c *Client) LatestSession(ctx context.Context) (*models.F1Session, error) {
	var sessions []session
	url := fmt.Sprintf("%s/sessions?year=%d", c.baseURL, c.now().Year())
	if err := c.fetch(ctx, url, &sessions); err != nil {
		return nil, err
	}

	chosen := pickSession(sessions, c.now())
	if chosen == nil {
		return nil, nil
	}

	// Drivers and positions are independent; fetch them together
	var (
		wg        sync.WaitGroup
		drivers   []driver
		positions []position
		driverErr error
		posErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		url := fmt.Sprintf("%s/drivers?session_key=%d", c.baseURL, chosen.SessionKey)
		driverErr = c.fetch(ctx, url, &drivers)
	}()
	go func() {
		defer wg.Done()
		url := fmt.Sprintf("%s/position?session_key=%d", c.baseURL, chosen.SessionKey)
		posErr = c.fetch(ctx, url, &positions)
	}()
	wg.Wait()

	if driverErr != nil {
		return nil, driverErr
	}
	if posErr != nil {
		return nil, posErr
	}

	return &models.F1Session{
		SessionKey:  chosen.SessionKey,
		MeetingName: chosen.CountryName + " Grand Prix",
		SessionName: chosen.SessionName,
		CircuitName: chosen.CircuitShortName,
		CountryName: chosen.CountryName,
		StartTime:   chosen.DateStart,
		EndTime:     chosen.DateEnd,
		Standings:   buildStandings(drivers, positions),
	}, nil
}

// pickSession chooses the session to display: the latest one already
// started, preferring the Race within the same meeting
func pickSession(sessions []session, now time.Time) *session {
	var started []session
	for _, s := range sessions {
		if !s.DateStart.After(now) {
			started = append(started, s)
		}
	}
	if len(started) == 0 {
		return nil
	}

	sort.Slice(started, func(i, j int) bool {
		return started[i].DateStart.After(started[j].DateStart)
	})

	latest := started[0]
	for _, s := range started {
		if s.MeetingKey != latest.MeetingKey {
			break
		}
		if s.SessionType == "Race" {
			return &s
		}
	}
	return &latest
}

// buildStandings merges the latest position record per driver with the
// driver roster, ordered by position
func buildStandings(drivers []driver, positions []position) []models.F1Standing {
	latest := make(map[int]position)
	for _, p := range positions {
		prev, ok := latest[p.DriverNumber]
		if !ok || p.Date.After(prev.Date) {
			latest[p.DriverNumber] = p
		}
	}

	byNumber := make(map[int]driver, len(drivers))
	for _, d := range drivers {
		byNumber[d.DriverNumber] = d
	}

	standings := make([]models.F1Standing, 0, len(latest))
	for number, pos := range latest {
		d := byNumber[number]
		standings = append(standings, models.F1Standing{
			Position:     pos.Position,
			DriverNumber: number,
			DriverName:   d.FullName,
			NameAcronym:  d.NameAcronym,
			TeamName:     d.TeamName,
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		return standings[i].Position < standings[j].Position
	})
	return standings
}

func (c *Client) fetch(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("OpenF1 API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

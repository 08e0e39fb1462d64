package espn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scorewatch/notify-service/pkg/models"
)

const scoreboardFixture = `{
  "events": [
    {
      "id": "401559840",
      "date": "2026-01-15T19:00Z",
      "name": "Boston Bruins at New York Rangers",
      "shortName": "BOS @ NYR",
      "competitions": [
        {
          "id": "401559840",
          "date": "2026-01-15T19:00Z",
          "competitors": [
            {
              "id": "1",
              "homeAway": "away",
              "score": "2",
              "team": {"id": "1", "displayName": "Boston Bruins", "abbreviation": "BOS"}
            },
            {
              "id": "2",
              "homeAway": "home",
              "score": "3",
              "team": {"id": "2", "displayName": "New York Rangers", "abbreviation": "NYR"}
            }
          ]
        }
      ],
      "status": {
        "displayClock": "12:34",
        "period": 2,
        "type": {"id": "2", "name": "STATUS_IN_PROGRESS", "state": "in", "description": "In Progress"}
      }
    },
    {
      "id": "401559841",
      "date": "2026-01-15T23:30Z",
      "competitions": [
        {
          "id": "401559841",
          "competitors": [
            {"id": "3", "homeAway": "home", "score": "", "team": {"displayName": "Colorado Avalanche", "abbreviation": "COL"}},
            {"id": "4", "homeAway": "away", "score": "", "team": {"displayName": "Dallas Stars", "abbreviation": "DAL"}}
          ]
        }
      ],
      "status": {"period": 0, "type": {"name": "STATUS_SCHEDULED", "state": "pre", "description": "Scheduled"}}
    },
    {
      "id": "401559842",
      "competitions": [
        {
          "id": "401559842",
          "competitors": [
            {"id": "5", "homeAway": "home", "score": "0", "team": {"displayName": "Lonely Team", "abbreviation": "LON"}}
          ]
        }
      ],
      "status": {"type": {"state": "pre"}}
    }
  ]
}`

func TestFetchScoreboard(t *testing.T) {
	var gotPath, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(scoreboardFixture))
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL)
	games, err := client.FetchScoreboard(context.Background(), models.LeagueNHL, "hockey/nhl", time.Time{})
	if err != nil {
		t.Fatalf("FetchScoreboard failed: %v", err)
	}

	if gotPath != "/hockey/nhl/scoreboard" {
		t.Errorf("expected path /hockey/nhl/scoreboard, got %s", gotPath)
	}
	if gotUA == "" {
		t.Error("expected a User-Agent header")
	}

	// The single-competitor event is skipped
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}

	live := games[0]
	if live.GameID != "401559840" {
		t.Errorf("expected game 401559840, got %s", live.GameID)
	}
	if live.Status != models.StatusLive {
		t.Errorf("expected live status, got %s", live.Status)
	}
	if live.HomeTeam != "New York Rangers" || live.AwayTeam != "Boston Bruins" {
		t.Errorf("home/away not normalized: home=%s away=%s", live.HomeTeam, live.AwayTeam)
	}
	if live.HomeScore != 3 || live.AwayScore != 2 {
		t.Errorf("expected score 3-2, got %d-%d", live.HomeScore, live.AwayScore)
	}
	if live.Period != 2 || live.TimeRemaining != "12:34" {
		t.Errorf("expected period 2 at 12:34, got %d at %s", live.Period, live.TimeRemaining)
	}
	wantStart := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)
	if !live.StartTime.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, live.StartTime)
	}

	upcoming := games[1]
	if upcoming.Status != models.StatusUpcoming {
		t.Errorf("expected upcoming status, got %s", upcoming.Status)
	}
	if upcoming.HomeScore != 0 || upcoming.AwayScore != 0 {
		t.Errorf("expected empty scores to read as zero, got %d-%d", upcoming.HomeScore, upcoming.AwayScore)
	}
}

func TestFetchScoreboard_DateParam(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"events": []}`))
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL)
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if _, err := client.FetchScoreboard(context.Background(), models.LeagueNHL, "hockey/nhl", date); err != nil {
		t.Fatalf("FetchScoreboard failed: %v", err)
	}
	if gotQuery != "dates=20260115" {
		t.Errorf("expected dates=20260115, got %q", gotQuery)
	}
}

func TestFetchScoreboard_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL)
	if _, err := client.FetchScoreboard(context.Background(), models.LeagueNHL, "hockey/nhl", time.Time{}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		state string
		name  string
		want  models.GameStatus
	}{
		{"pre", "STATUS_SCHEDULED", models.StatusUpcoming},
		{"in", "STATUS_IN_PROGRESS", models.StatusLive},
		{"post", "STATUS_FINAL", models.StatusFinal},
		{"post", "STATUS_POSTPONED", models.StatusPostponed},
		{"post", "STATUS_CANCELED", models.StatusPostponed},
		{"", "", models.StatusUpcoming},
	}

	for _, tt := range tests {
		got := mapStatus(statusType{State: tt.state, Name: tt.name})
		if got != tt.want {
			t.Errorf("mapStatus(state=%q, name=%q) = %s, want %s", tt.state, tt.name, got, tt.want)
		}
	}
}

func TestFlexTime(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{`"2026-01-15T19:00Z"`, time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)},
		{`"2026-01-15T19:00:30Z"`, time.Date(2026, 1, 15, 19, 0, 30, 0, time.UTC)},
		{`""`, time.Time{}},
		{`null`, time.Time{}},
	}

	for _, tt := range tests {
		var ft FlexTime
		if err := json.Unmarshal([]byte(tt.raw), &ft); err != nil {
			t.Errorf("unmarshal %s failed: %v", tt.raw, err)
			continue
		}
		if !ft.Time.Equal(tt.want) {
			t.Errorf("unmarshal %s = %v, want %v", tt.raw, ft.Time, tt.want)
		}
	}

	var ft FlexTime
	if err := json.Unmarshal([]byte(`"not a date"`), &ft); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}

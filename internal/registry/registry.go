// Package registry holds the fixed roster of leagues the product renders
// and which of them support push notifications.
package registry

import (
	"fmt"

	"github.com/scorewatch/notify-service/pkg/models"
)

// LeagueInfo describes one supported league
type LeagueInfo struct {
	Key           models.League `json:"key"`
	DisplayName   string        `json:"display_name"`
	ESPNPath      string        `json:"espn_path"` // "{sport}/{league}" segment of the scoreboard URL
	Notifications bool          `json:"notifications"`
}

// Registry manages the league roster
type Registry struct {
	leagues map[models.League]LeagueInfo
	order   []models.League
}

// New creates a registry with the full rendered roster. F1 and PGA are
// served by dedicated adapters, not the ESPN scoreboard, so they are not
// listed here.
func New() *Registry {
	r := &Registry{leagues: make(map[models.League]LeagueInfo)}

	r.register(LeagueInfo{Key: models.LeagueNHL, DisplayName: "NHL", ESPNPath: "hockey/nhl", Notifications: true})
	r.register(LeagueInfo{Key: models.LeagueNFL, DisplayName: "NFL", ESPNPath: "football/nfl", Notifications: true})
	r.register(LeagueInfo{Key: models.LeagueNBA, DisplayName: "NBA", ESPNPath: "basketball/nba", Notifications: true})
	r.register(LeagueInfo{Key: models.LeagueMLB, DisplayName: "MLB", ESPNPath: "baseball/mlb", Notifications: true})
	r.register(LeagueInfo{Key: models.LeagueMLS, DisplayName: "MLS", ESPNPath: "soccer/usa.1", Notifications: false})
	r.register(LeagueInfo{Key: models.LeagueEPL, DisplayName: "Premier League", ESPNPath: "soccer/eng.1", Notifications: false})
	r.register(LeagueInfo{Key: models.LeagueNCAAM, DisplayName: "NCAA Basketball", ESPNPath: "basketball/mens-college-basketball", Notifications: false})

	return r
}

func (r *Registry) register(info LeagueInfo) {
	r.leagues[info.Key] = info
	r.order = append(r.order, info.Key)
}

// Get retrieves a league by key
func (r *Registry) Get(key models.League) (LeagueInfo, error) {
	info, ok := r.leagues[key]
	if !ok {
		return LeagueInfo{}, fmt.Errorf("unknown league: %s", key)
	}
	return info, nil
}

// SupportsNotifications reports whether subscriptions are accepted for a league
func (r *Registry) SupportsNotifications(key models.League) bool {
	info, ok := r.leagues[key]
	return ok && info.Notifications
}

// All returns every rendered league in registration order
func (r *Registry) All() []LeagueInfo {
	infos := make([]LeagueInfo, 0, len(r.order))
	for _, key := range r.order {
		infos = append(infos, r.leagues[key])
	}
	return infos
}

// NotificationLeagues returns the subset of leagues with notification support
func (r *Registry) NotificationLeagues() []models.League {
	var keys []models.League
	for _, key := range r.order {
		if r.leagues[key].Notifications {
			keys = append(keys, key)
		}
	}
	return keys
}

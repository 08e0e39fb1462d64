// Package detector derives notification events from consecutive game
// state snapshots.
package detector

import (
	"time"

	"github.com/scorewatch/notify-service/pkg/models"
)

// Detect compares the previous cached snapshot with the fresh one and
// returns the events the transition implies. A nil prev means this is the
// first observation: only a start or end already in progress is reported,
// never a score delta, since there is no baseline to diff against.
func Detect(prev *models.CachedGameState, curr models.CachedGameState, at time.Time) []models.GameEvent {
	var events []models.GameEvent

	emit := func(kind string) {
		events = append(events, models.GameEvent{
			Kind:      kind,
			GameID:    curr.GameID,
			League:    curr.League,
			HomeTeam:  curr.HomeTeam,
			AwayTeam:  curr.AwayTeam,
			HomeScore: curr.HomeScore,
			AwayScore: curr.AwayScore,
			Status:    curr.Status,
			Period:    curr.Period,
			Timestamp: at,
		})
	}

	if prev == nil {
		switch curr.Status {
		case models.StatusLive:
			emit(models.EventGameStart)
		case models.StatusFinal:
			emit(models.EventGameEnd)
		}
		return events
	}

	if prev.Status != models.StatusLive && curr.Status == models.StatusLive {
		emit(models.EventGameStart)
	}

	if curr.HomeScore != prev.HomeScore || curr.AwayScore != prev.AwayScore {
		emit(models.EventScoreChange)
	}

	if curr.Period != prev.Period && curr.Status == models.StatusLive && prev.Status == models.StatusLive {
		emit(models.EventPeriodChange)
	}

	if prev.Status != models.StatusFinal && curr.Status == models.StatusFinal {
		emit(models.EventGameEnd)
	}

	return events
}

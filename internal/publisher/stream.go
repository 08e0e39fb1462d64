// Package publisher emits score updates onto per-league Redis streams for
// downstream fan-out.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/scorewatch/notify-service/pkg/models"
)

// StreamKey returns the stream name for a league
func StreamKey(league models.League) string {
	return fmt.Sprintf("scores.updates.%s", league)
}

// StreamPublisher publishes score updates to Redis streams
type StreamPublisher struct {
	client *redis.Client
}

// NewStreamPublisher creates a stream publisher
func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{client: client}
}

// PublishScoreUpdate publishes one game's fresh state to its league stream
func (p *StreamPublisher) PublishScoreUpdate(ctx context.Context, update models.ScoreUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshaling score update: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(update.Game.League),
		MaxLen: 1000,
		Approx: true,
		Values: map[string]interface{}{
			"data":    string(data),
			"game_id": update.Game.GameID,
			"status":  string(update.Game.Status),
		},
	}).Err()
}

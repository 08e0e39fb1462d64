// Package consumer reads score updates off the per-league Redis streams
// and hands them to the broadcast hub.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/scorewatch/notify-service/internal/hub"
	"github.com/scorewatch/notify-service/internal/publisher"
	"github.com/scorewatch/notify-service/pkg/models"
)

const (
	batchSize     = 100
	blockDuration = 1 * time.Second
)

// StreamConsumer consumes score updates from Redis streams
type StreamConsumer struct {
	redis    *redis.Client
	hub      *hub.Hub
	group    string
	consumer string
	leagues  []models.League
}

// New creates a stream consumer for the given league roster
func New(redisClient *redis.Client, h *hub.Hub, group, consumerID string, leagues []models.League) *StreamConsumer {
	return &StreamConsumer{
		redis:    redisClient,
		hub:      h,
		group:    group,
		consumer: consumerID,
		leagues:  leagues,
	}
}

// Start begins consuming from every league stream, returning when ctx is
// cancelled
func (sc *StreamConsumer) Start(ctx context.Context) {
	for _, league := range sc.leagues {
		stream := publisher.StreamKey(league)
		sc.createConsumerGroup(ctx, stream)
		go sc.consumeStream(ctx, stream)
	}
	<-ctx.Done()
}

func (sc *StreamConsumer) createConsumerGroup(ctx context.Context, stream string) {
	err := sc.redis.XGroupCreateMkStream(ctx, stream, sc.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		fmt.Printf("⚠️  Failed to create consumer group for %s: %v\n", stream, err)
	}
}

func (sc *StreamConsumer) consumeStream(ctx context.Context, stream string) {
	fmt.Printf("  📡 Consuming stream: %s\n", stream)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			streams, err := sc.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    sc.group,
				Consumer: sc.consumer,
				Streams:  []string{stream, ">"},
				Count:    batchSize,
				Block:    blockDuration,
			}).Result()

			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				fmt.Printf("⚠️  Stream read error (%s): %v\n", stream, err)
				time.Sleep(1 * time.Second)
				continue
			}

			for _, result := range streams {
				for _, message := range result.Messages {
					sc.handleMessage(ctx, result.Stream, message)
				}
			}
		}
	}
}

func (sc *StreamConsumer) handleMessage(ctx context.Context, stream string, message redis.XMessage) {
	defer sc.redis.XAck(ctx, stream, sc.group, message.ID)

	data, ok := message.Values["data"].(string)
	if !ok {
		fmt.Printf("⚠️  Message %s on %s has no data field\n", message.ID, stream)
		return
	}

	var update models.ScoreUpdate
	if err := json.Unmarshal([]byte(data), &update); err != nil {
		fmt.Printf("⚠️  Failed to parse score update %s: %v\n", message.ID, err)
		return
	}

	sc.hub.Broadcast(update)
}

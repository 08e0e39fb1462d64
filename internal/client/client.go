// Package client wraps one WebSocket connection with its read/write pumps
// and per-client stream filter.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scorewatch/notify-service/pkg/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 256
)

// Hub is the slice of the broadcast hub a client needs
type Hub interface {
	Unregister(c *Client)
}

// Client represents a WebSocket client connection
type Client struct {
	ID   string
	Send chan models.ServerMessage

	conn     *websocket.Conn
	hub      Hub
	filter   models.SubscriptionFilter
	filterMu sync.RWMutex
}

// New creates a client for an upgraded connection
func New(id string, conn *websocket.Conn, hub Hub) *Client {
	return &Client{
		ID:   id,
		Send: make(chan models.ServerMessage, sendBufferSize),
		conn: conn,
		hub:  hub,
	}
}

// ReadPump consumes client messages until the connection drops
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg models.ClientMessage
			if err := c.conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					fmt.Printf("client %s unexpected close: %v\n", c.ID, err)
				}
				return
			}
			c.handleClientMessage(msg)
		}
	}
}

// WritePump drains the send buffer to the connection and keeps it alive
// with pings
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				fmt.Printf("client %s write error: %v\n", c.ID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues a message without blocking. False means the buffer is full.
func (c *Client) TrySend(msg models.ServerMessage) bool {
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// SetFilter replaces the client's stream filter
func (c *Client) SetFilter(filter models.SubscriptionFilter) {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()
	c.filter = filter
}

// MatchesFilter reports whether an update passes the client's filter.
// An empty filter accepts everything.
func (c *Client) MatchesFilter(update models.ScoreUpdate) bool {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()

	if len(c.filter.Leagues) == 0 && len(c.filter.Games) == 0 {
		return true
	}

	for _, league := range c.filter.Leagues {
		if league == update.Game.League {
			return true
		}
	}
	for _, gameID := range c.filter.Games {
		if gameID == update.Game.GameID {
			return true
		}
	}
	return false
}

func (c *Client) handleClientMessage(msg models.ClientMessage) {
	switch msg.Type {
	case models.MessageTypeSubscribe:
		c.handleSubscribe(msg.Payload)
	case models.MessageTypeUnsubscribe:
		c.SetFilter(models.SubscriptionFilter{})
	case models.MessageTypeHeartbeat:
		c.TrySend(models.ServerMessage{Type: models.MessageTypeHeartbeat, Timestamp: time.Now()})
	default:
		c.sendError("unknown_message_type", fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (c *Client) handleSubscribe(payload map[string]interface{}) {
	filterJSON, err := json.Marshal(payload)
	if err != nil {
		c.sendError("invalid_filter", "failed to parse filter")
		return
	}

	var filter models.SubscriptionFilter
	if err := json.Unmarshal(filterJSON, &filter); err != nil {
		c.sendError("invalid_filter", "failed to parse filter")
		return
	}

	c.SetFilter(filter)
	fmt.Printf("client %s subscribed: leagues=%v games=%v\n", c.ID, filter.Leagues, filter.Games)
}

func (c *Client) sendError(code, message string) {
	c.TrySend(models.ServerMessage{
		Type: models.MessageTypeError,
		Payload: models.ErrorMessage{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now(),
	})
}

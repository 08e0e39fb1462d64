// Package hub fans score updates out to connected WebSocket clients.
package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/scorewatch/notify-service/internal/client"
	"github.com/scorewatch/notify-service/pkg/models"
)

// Hub maintains the set of active clients and broadcasts updates to them
type Hub struct {
	clients   map[*client.Client]bool
	clientsMu sync.RWMutex

	broadcast  chan models.ScoreUpdate
	register   chan *client.Client
	unregister chan *client.Client

	totalConnections int64
	totalMessages    int64
	metricsMu        sync.Mutex
}

// New creates a Hub
func New() *Hub {
	return &Hub{
		clients:    make(map[*client.Client]bool),
		broadcast:  make(chan models.ScoreUpdate, 1000),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
	}
}

// Run starts the hub's main loop, returning when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case update := <-h.broadcast:
			h.broadcastUpdate(update)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *client.Client) {
	h.register <- c
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *client.Client) {
	h.unregister <- c
}

// Broadcast queues a score update for fan-out (non-blocking; drops when
// the buffer is full)
func (h *Hub) Broadcast(update models.ScoreUpdate) {
	select {
	case h.broadcast <- update:
	default:
		fmt.Println("⚠️  Broadcast buffer full, dropping score update")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Metrics returns hub counters
func (h *Hub) Metrics() map[string]interface{} {
	h.clientsMu.RLock()
	active := len(h.clients)
	h.clientsMu.RUnlock()

	h.metricsMu.Lock()
	connections := h.totalConnections
	messages := h.totalMessages
	h.metricsMu.Unlock()

	return map[string]interface{}{
		"active_clients":    active,
		"total_connections": connections,
		"total_messages":    messages,
	}
}

func (h *Hub) registerClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true

	h.metricsMu.Lock()
	h.totalConnections++
	h.metricsMu.Unlock()

	fmt.Printf("client %s connected (total: %d)\n", c.ID, len(h.clients))
}

func (h *Hub) unregisterClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		fmt.Printf("client %s disconnected (total: %d)\n", c.ID, len(h.clients))
	}
}

func (h *Hub) broadcastUpdate(update models.ScoreUpdate) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	message := models.ServerMessage{
		Type:      models.MessageTypeScoreUpdate,
		Payload:   update,
		Timestamp: time.Now(),
	}

	for _, c := range clients {
		if !c.MatchesFilter(update) {
			continue
		}
		if !c.TrySend(message) {
			// Buffer full: the client is too slow, cut it loose
			fmt.Printf("⚠️  client %s buffer full, disconnecting\n", c.ID)
			go h.Unregister(c)
			continue
		}

		h.metricsMu.Lock()
		h.totalMessages++
		h.metricsMu.Unlock()
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	fmt.Printf("🛑 Shutting down hub (%d active clients)\n", len(h.clients))
	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
}

package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/scorewatch/notify-service/internal/client"
	"github.com/scorewatch/notify-service/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware gates the REST surface; score updates are public
		return true
	},
}

// WSHandler upgrades connections into the broadcast hub
type WSHandler struct {
	hub *hub.Hub
	ctx context.Context
}

// NewWSHandler creates a WebSocket handler. ctx bounds client pump
// lifetimes to the server, not the upgrade request.
func NewWSHandler(h *hub.Hub, ctx context.Context) *WSHandler {
	return &WSHandler{hub: h, ctx: ctx}
}

// HandleWebSocket upgrades an HTTP connection to WebSocket
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("⚠️  WebSocket upgrade error: %v\n", err)
		return
	}

	c := client.New(uuid.New().String(), conn, h.hub)
	h.hub.Register(c)

	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}

// HandleMetrics returns hub counters.
// GET /api/v1/ws/metrics
func (h *WSHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.hub.Metrics())
}

package models

import "time"

// Message types for WebSocket communication
const (
	MessageTypeScoreUpdate = "score_update"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ScoreUpdate is the broadcast payload for one game's fresh state
type ScoreUpdate struct {
	Game   Game        `json:"game"`
	Events []GameEvent `json:"events,omitempty"`
}

// SubscriptionFilter represents a WebSocket client's stream preferences
type SubscriptionFilter struct {
	Leagues []League `json:"leagues,omitempty"`
	Games   []string `json:"games,omitempty"`
}

// ErrorMessage represents an error message sent to a WebSocket client
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON error body for HTTP endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

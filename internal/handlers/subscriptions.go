package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/scorewatch/notify-service/internal/registry"
	"github.com/scorewatch/notify-service/internal/store"
	"github.com/scorewatch/notify-service/pkg/models"
)

// SubscriptionStore is the slice of the store the subscription endpoints use
type SubscriptionStore interface {
	SaveSubscription(ctx context.Context, sub *models.NotificationSubscription) error
	GetSubscription(ctx context.Context, id string) (*models.NotificationSubscription, error)
	AddGameSubscription(ctx context.Context, subscriptionID string, game models.GameSubscription) error
	RemoveGameSubscription(ctx context.Context, subscriptionID, gameID string) error
}

// Pusher delivers push notifications and exposes the VAPID public key
type Pusher interface {
	Send(ctx context.Context, sub models.PushSubscription, payload models.NotificationPayload) error
	VAPIDPublicKey() string
}

// SubscriptionHandler handles subscribe/unsubscribe/test endpoints
type SubscriptionHandler struct {
	store    SubscriptionStore
	registry *registry.Registry
	pusher   Pusher
}

// NewSubscriptionHandler creates a subscription handler
func NewSubscriptionHandler(s SubscriptionStore, reg *registry.Registry, pusher Pusher) *SubscriptionHandler {
	return &SubscriptionHandler{
		store:    s,
		registry: reg,
		pusher:   pusher,
	}
}

type subscribeRequest struct {
	SubscriptionID   string                  `json:"subscriptionId"`
	PushSubscription models.PushSubscription `json:"pushSubscription"`
	GameID           string                  `json:"gameId"`
	League           models.League           `json:"league"`
	HomeTeam         string                  `json:"homeTeam"`
	AwayTeam         string                  `json:"awayTeam"`
	GameStartTime    *time.Time              `json:"gameStartTime,omitempty"`
	Events           map[string]bool         `json:"events,omitempty"`
}

// Subscribe registers interest in one game's notifications.
// POST /api/v1/subscribe
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.GameID == "" || req.HomeTeam == "" || req.AwayTeam == "" {
		respondError(w, http.StatusBadRequest, "gameId, homeTeam and awayTeam are required", nil)
		return
	}
	if req.PushSubscription.Endpoint == "" {
		respondError(w, http.StatusBadRequest, "pushSubscription is required", nil)
		return
	}
	if !h.registry.SupportsNotifications(req.League) {
		respondError(w, http.StatusBadRequest, "league does not support notifications", nil)
		return
	}

	sub, err := h.resolveSubscription(ctx, req)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "failed to load subscription", err)
		return
	}

	gameSub := models.GameSubscription{
		GameID:        req.GameID,
		League:        req.League,
		HomeTeam:      req.HomeTeam,
		AwayTeam:      req.AwayTeam,
		GameStartTime: req.GameStartTime,
		Events:        mergeEventPreferences(req.Events),
		SubscribedAt:  time.Now().UTC(),
	}

	if err := h.store.AddGameSubscription(ctx, sub.ID, gameSub); err != nil {
		respondError(w, http.StatusServiceUnavailable, "failed to add game subscription", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"subscriptionId":   sub.ID,
		"gameSubscription": gameSub,
	})
}

// resolveSubscription loads the caller's subscription, creating a fresh one
// when the ID is absent or no longer resolves. The push endpoint is always
// refreshed with whatever the browser sent.
func (h *SubscriptionHandler) resolveSubscription(ctx context.Context, req subscribeRequest) (*models.NotificationSubscription, error) {
	if req.SubscriptionID != "" {
		sub, err := h.store.GetSubscription(ctx, req.SubscriptionID)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			sub.PushSubscription = req.PushSubscription
			sub.LastSeen = time.Now().UTC()
			if err := h.store.SaveSubscription(ctx, sub); err != nil {
				return nil, err
			}
			return sub, nil
		}
	}

	now := time.Now().UTC()
	sub := &models.NotificationSubscription{
		ID:               uuid.New().String(),
		PushSubscription: req.PushSubscription,
		CreatedAt:        now,
		LastSeen:         now,
	}
	if err := h.store.SaveSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

type unsubscribeRequest struct {
	SubscriptionID string `json:"subscriptionId"`
	GameID         string `json:"gameId"`
}

// Unsubscribe drops one game from a subscription.
// POST /api/v1/unsubscribe
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.SubscriptionID == "" || req.GameID == "" {
		respondError(w, http.StatusBadRequest, "subscriptionId and gameId are required", nil)
		return
	}

	if err := h.store.RemoveGameSubscription(ctx, req.SubscriptionID, req.GameID); err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			respondError(w, http.StatusNotFound, "subscription not found", nil)
			return
		}
		respondError(w, http.StatusServiceUnavailable, "failed to remove game subscription", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type testNotificationRequest struct {
	SubscriptionID string `json:"subscriptionId"`
}

// SendTestNotification delivers a test push to one subscription.
// POST /api/v1/notifications/test
func (h *SubscriptionHandler) SendTestNotification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req testNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.SubscriptionID == "" {
		respondError(w, http.StatusBadRequest, "subscriptionId is required", nil)
		return
	}

	sub, err := h.store.GetSubscription(ctx, req.SubscriptionID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "failed to load subscription", err)
		return
	}
	if sub == nil {
		respondError(w, http.StatusNotFound, "subscription not found", nil)
		return
	}

	payload := models.NotificationPayload{
		Title: "ScoreWatch test",
		Body:  "Notifications are working",
		Tag:   "test",
	}

	if err := h.pusher.Send(ctx, sub.PushSubscription, payload); err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"delivered": false,
			"error":     err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"delivered": true,
	})
}

// VAPIDPublicKey returns the key browsers use to create push subscriptions.
// GET /api/v1/notifications/vapid-key
func (h *SubscriptionHandler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"publicKey": h.pusher.VAPIDPublicKey(),
	})
}

// mergeEventPreferences overlays user choices on the defaults
func mergeEventPreferences(overrides map[string]bool) map[string]bool {
	prefs := models.DefaultEventPreferences()
	for kind, enabled := range overrides {
		prefs[kind] = enabled
	}
	return prefs
}

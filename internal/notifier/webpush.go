// Package notifier delivers notifications to browsers over web push.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/scorewatch/notify-service/pkg/models"
)

// ErrSubscriptionGone marks a push endpoint the service rejected as dead
// (404/410). Callers should prune the subscription instead of retrying.
var ErrSubscriptionGone = errors.New("notifier: push subscription gone")

// PushNotifier sends web push notifications signed with VAPID keys
type PushNotifier struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string // contact address; webpush-go adds mailto:
	ttlSeconds      int
}

// New creates a push notifier. Empty keys disable delivery: Send logs and
// returns nil so the rest of the pipeline keeps working in development.
func New(vapidPublicKey, vapidPrivateKey, subscriber string) *PushNotifier {
	return &PushNotifier{
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		subscriber:      subscriber,
		ttlSeconds:      60 * 60, // an hour; a stale score alert is useless
	}
}

// Enabled reports whether VAPID keys are configured
func (n *PushNotifier) Enabled() bool {
	return n.vapidPublicKey != "" && n.vapidPrivateKey != ""
}

// VAPIDPublicKey returns the key browsers need to create subscriptions
func (n *PushNotifier) VAPIDPublicKey() string {
	return n.vapidPublicKey
}

// Send delivers one payload to one push endpoint
func (n *PushNotifier) Send(ctx context.Context, sub models.PushSubscription, payload models.NotificationPayload) error {
	if !n.Enabled() {
		fmt.Printf("⚠️  VAPID keys not configured, skipping push: %s\n", payload.Title)
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling push payload: %w", err)
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, target, &webpush.Options{
		Subscriber:      n.subscriber,
		VAPIDPublicKey:  n.vapidPublicKey,
		VAPIDPrivateKey: n.vapidPrivateKey,
		TTL:             n.ttlSeconds,
	})
	if err != nil {
		return fmt.Errorf("sending push notification: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: status=%d", ErrSubscriptionGone, resp.StatusCode)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
}

// FormatEvent builds the notification payload for a detected game event
func FormatEvent(event models.GameEvent) models.NotificationPayload {
	matchup := fmt.Sprintf("%s @ %s", event.AwayTeam, event.HomeTeam)
	score := fmt.Sprintf("%s %d - %d %s", event.AwayTeam, event.AwayScore, event.HomeScore, event.HomeTeam)

	var title, body string
	switch event.Kind {
	case models.EventGameStart:
		title = "Game started"
		body = matchup
	case models.EventScoreChange:
		title = "Score update"
		body = score
	case models.EventPeriodChange:
		title = fmt.Sprintf("Period %d", event.Period)
		body = score
	case models.EventGameEnd:
		title = "Final"
		body = score
	default:
		title = "Game update"
		body = score
	}

	return models.NotificationPayload{
		Title: title,
		Body:  body,
		Tag:   fmt.Sprintf("game-%s", event.GameID),
		URL:   fmt.Sprintf("/%s", event.League),
	}
}

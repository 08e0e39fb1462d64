package hub_test

import (
	"context"
	"testing"
	"time"

	"github.com/scorewatch/notify-service/internal/client"
	"github.com/scorewatch/notify-service/internal/hub"
	"github.com/scorewatch/notify-service/pkg/models"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestRegisterUnregister(t *testing.T) {
	h := hub.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := client.New("c1", nil, h)
	h.Register(c)
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client never registered")

	h.Unregister(c)
	waitFor(t, func() bool { return h.ClientCount() == 0 }, "client never unregistered")

	// Send is closed on unregister
	if _, ok := <-c.Send; ok {
		t.Error("expected Send channel closed after unregister")
	}
}

func TestBroadcast_FanOut(t *testing.T) {
	h := hub.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c1 := client.New("c1", nil, h)
	c2 := client.New("c2", nil, h)
	h.Register(c1)
	h.Register(c2)
	waitFor(t, func() bool { return h.ClientCount() == 2 }, "clients never registered")

	h.Broadcast(models.ScoreUpdate{Game: models.Game{GameID: "g1", League: models.LeagueNHL}})

	for _, c := range []*client.Client{c1, c2} {
		select {
		case msg := <-c.Send:
			if msg.Type != models.MessageTypeScoreUpdate {
				t.Errorf("expected score_update, got %s", msg.Type)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %s never received the update", c.ID)
		}
	}
}

func TestBroadcast_RespectsClientFilter(t *testing.T) {
	h := hub.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	nhlOnly := client.New("nhl-only", nil, h)
	nhlOnly.SetFilter(models.SubscriptionFilter{Leagues: []models.League{models.LeagueNHL}})
	everything := client.New("everything", nil, h)
	h.Register(nhlOnly)
	h.Register(everything)
	waitFor(t, func() bool { return h.ClientCount() == 2 }, "clients never registered")

	h.Broadcast(models.ScoreUpdate{Game: models.Game{GameID: "nba-100", League: models.LeagueNBA}})

	select {
	case <-everything.Send:
	case <-time.After(2 * time.Second):
		t.Fatal("unfiltered client never received the update")
	}

	select {
	case msg := <-nhlOnly.Send:
		t.Errorf("filtered client received %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestShutdown_ClosesClients(t *testing.T) {
	h := hub.New()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := client.New("c1", nil, h)
	h.Register(c)
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client never registered")

	cancel()
	waitFor(t, func() bool { return h.ClientCount() == 0 }, "hub never shut down")

	if _, ok := <-c.Send; ok {
		t.Error("expected Send channel closed on shutdown")
	}
}

func TestMetrics(t *testing.T) {
	h := hub.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := client.New("c1", nil, h)
	h.Register(c)
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client never registered")

	h.Broadcast(models.ScoreUpdate{Game: models.Game{GameID: "g1", League: models.LeagueNHL}})
	waitFor(t, func() bool {
		return h.Metrics()["total_messages"].(int64) == 1
	}, "message counter never incremented")

	metrics := h.Metrics()
	if metrics["active_clients"].(int) != 1 {
		t.Errorf("expected 1 active client, got %v", metrics["active_clients"])
	}
	if metrics["total_connections"].(int64) != 1 {
		t.Errorf("expected 1 total connection, got %v", metrics["total_connections"])
	}
}

package poller_test

import (
	"context"
	"testing"
	"time"

	"github.com/scorewatch/notify-service/internal/kv"
	"github.com/scorewatch/notify-service/internal/notifier"
	"github.com/scorewatch/notify-service/internal/poller"
	"github.com/scorewatch/notify-service/internal/registry"
	"github.com/scorewatch/notify-service/internal/store"
	"github.com/scorewatch/notify-service/pkg/models"
)

// MockPicker returns a fixed league list
type MockPicker struct {
	leagues []models.League
}

func (m *MockPicker) LeaguesNeedingPolling(ctx context.Context) ([]models.League, error) {
	return m.leagues, nil
}

// MockScoreboard serves scripted games per league
type MockScoreboard struct {
	games   map[models.League][]models.Game
	fetches int
}

func (m *MockScoreboard) FetchScoreboard(ctx context.Context, league models.League, leaguePath string, date time.Time) ([]models.Game, error) {
	m.fetches++
	return m.games[league], nil
}

// MockNotifier records pushes and returns a scripted error
type MockNotifier struct {
	sent    []models.NotificationPayload
	sendErr error
}

func (m *MockNotifier) Send(ctx context.Context, sub models.PushSubscription, payload models.NotificationPayload) error {
	m.sent = append(m.sent, payload)
	return m.sendErr
}

// MockPublisher records broadcast updates
type MockPublisher struct {
	updates []models.ScoreUpdate
}

func (m *MockPublisher) PublishScoreUpdate(ctx context.Context, update models.ScoreUpdate) error {
	m.updates = append(m.updates, update)
	return nil
}

// MockCache records scoreboard writes
type MockCache struct {
	writes map[models.League][]models.Game
}

func (m *MockCache) WriteScoreboard(ctx context.Context, league models.League, games []models.Game) error {
	if m.writes == nil {
		m.writes = make(map[models.League][]models.Game)
	}
	m.writes[league] = games
	return nil
}

type fixture struct {
	poller    *poller.Poller
	store     *store.Store
	picker    *MockPicker
	scores    *MockScoreboard
	notifier  *MockNotifier
	publisher *MockPublisher
	cache     *MockCache
}

func newFixture() *fixture {
	s := store.New(kv.NewMemory(), []models.League{models.LeagueNHL, models.LeagueNFL, models.LeagueNBA, models.LeagueMLB})
	f := &fixture{
		store:     s,
		picker:    &MockPicker{},
		scores:    &MockScoreboard{games: make(map[models.League][]models.Game)},
		notifier:  &MockNotifier{},
		publisher: &MockPublisher{},
		cache:     &MockCache{},
	}
	f.poller = poller.New(registry.New(), f.picker, f.scores, s, f.notifier, f.publisher, f.cache)
	return f
}

func (f *fixture) subscribe(t *testing.T, subID, gameID string, league models.League, events map[string]bool) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	sub := &models.NotificationSubscription{ID: subID, CreatedAt: now, LastSeen: now}
	sub.PushSubscription.Endpoint = "https://push.example.com/" + subID
	if err := f.store.SaveSubscription(ctx, sub); err != nil {
		t.Fatalf("SaveSubscription failed: %v", err)
	}

	if events == nil {
		events = models.DefaultEventPreferences()
	}
	game := models.GameSubscription{
		GameID:       gameID,
		League:       league,
		HomeTeam:     "Home",
		AwayTeam:     "Away",
		Events:       events,
		SubscribedAt: now,
	}
	if err := f.store.AddGameSubscription(ctx, subID, game); err != nil {
		t.Fatalf("AddGameSubscription failed: %v", err)
	}
}

func liveGame(id string, league models.League, home, away, period int) models.Game {
	return models.Game{
		GameID:    id,
		League:    league,
		Status:    models.StatusLive,
		HomeTeam:  "Home",
		AwayTeam:  "Away",
		HomeScore: home,
		AwayScore: away,
		Period:    period,
	}
}

func TestRunCycle_ScoreChangeNotifiesAndPublishes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.subscribe(t, "sub-1", "nhl-401", models.LeagueNHL, nil)
	f.picker.leagues = []models.League{models.LeagueNHL}

	// Baseline
	if err := f.store.SaveGameState(ctx, &models.CachedGameState{
		GameID: "nhl-401", League: models.LeagueNHL, Status: models.StatusLive,
		HomeScore: 1, AwayScore: 0, Period: 2,
	}); err != nil {
		t.Fatalf("SaveGameState failed: %v", err)
	}

	f.scores.games[models.LeagueNHL] = []models.Game{liveGame("nhl-401", models.LeagueNHL, 2, 0, 2)}
	f.poller.RunCycle(ctx)

	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected one push, got %d", len(f.notifier.sent))
	}
	if len(f.publisher.updates) != 1 {
		t.Fatalf("expected one published update, got %d", len(f.publisher.updates))
	}
	update := f.publisher.updates[0]
	if len(update.Events) != 1 || update.Events[0].Kind != models.EventScoreChange {
		t.Errorf("expected a score_change event, got %+v", update.Events)
	}

	// Fresh state persisted
	state, _ := f.store.GetGameState(ctx, "nhl-401")
	if state == nil || state.HomeScore != 2 {
		t.Errorf("expected new state with home score 2, got %+v", state)
	}

	// Scoreboard cached for the read path
	if len(f.cache.writes[models.LeagueNHL]) != 1 {
		t.Errorf("expected scoreboard cached, got %+v", f.cache.writes)
	}
}

func TestRunCycle_NoChangeNoNotification(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.subscribe(t, "sub-1", "nhl-401", models.LeagueNHL, nil)
	f.picker.leagues = []models.League{models.LeagueNHL}

	if err := f.store.SaveGameState(ctx, &models.CachedGameState{
		GameID: "nhl-401", League: models.LeagueNHL, Status: models.StatusLive,
		HomeScore: 1, AwayScore: 0, Period: 2,
	}); err != nil {
		t.Fatalf("SaveGameState failed: %v", err)
	}

	f.scores.games[models.LeagueNHL] = []models.Game{liveGame("nhl-401", models.LeagueNHL, 1, 0, 2)}
	f.poller.RunCycle(ctx)

	if len(f.notifier.sent) != 0 {
		t.Errorf("expected no pushes, got %d", len(f.notifier.sent))
	}
	if len(f.publisher.updates) != 0 {
		t.Errorf("expected no published updates, got %d", len(f.publisher.updates))
	}
}

func TestRunCycle_EventPreferencesRespected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Only wants the final score
	f.subscribe(t, "sub-1", "nhl-401", models.LeagueNHL, map[string]bool{
		models.EventGameEnd: true,
	})
	f.picker.leagues = []models.League{models.LeagueNHL}

	if err := f.store.SaveGameState(ctx, &models.CachedGameState{
		GameID: "nhl-401", League: models.LeagueNHL, Status: models.StatusLive,
		HomeScore: 1, AwayScore: 0, Period: 3,
	}); err != nil {
		t.Fatalf("SaveGameState failed: %v", err)
	}

	f.scores.games[models.LeagueNHL] = []models.Game{liveGame("nhl-401", models.LeagueNHL, 2, 0, 3)}
	f.poller.RunCycle(ctx)

	if len(f.notifier.sent) != 0 {
		t.Errorf("expected score_change suppressed by preferences, got %d pushes", len(f.notifier.sent))
	}
	// The broadcast stream is preference-independent
	if len(f.publisher.updates) != 1 {
		t.Errorf("expected the update still published, got %d", len(f.publisher.updates))
	}
}

func TestRunCycle_FinalGameCleanedUp(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.subscribe(t, "sub-1", "nhl-401", models.LeagueNHL, nil)
	f.picker.leagues = []models.League{models.LeagueNHL}

	if err := f.store.SaveGameState(ctx, &models.CachedGameState{
		GameID: "nhl-401", League: models.LeagueNHL, Status: models.StatusLive,
		HomeScore: 3, AwayScore: 2, Period: 3,
	}); err != nil {
		t.Fatalf("SaveGameState failed: %v", err)
	}

	final := liveGame("nhl-401", models.LeagueNHL, 3, 2, 3)
	final.Status = models.StatusFinal
	f.scores.games[models.LeagueNHL] = []models.Game{final}
	f.poller.RunCycle(ctx)

	// game_end delivered before cleanup
	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected one push, got %d", len(f.notifier.sent))
	}

	active, _ := f.store.GetActiveGames(ctx)
	if len(active) != 0 {
		t.Errorf("expected game cleaned up, active=%v", active)
	}
	if state, _ := f.store.GetGameState(ctx, "nhl-401"); state != nil {
		t.Errorf("expected state deleted after cleanup, got %+v", state)
	}
}

func TestRunCycle_GoneSubscriptionPruned(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.subscribe(t, "sub-1", "nhl-401", models.LeagueNHL, nil)
	f.picker.leagues = []models.League{models.LeagueNHL}
	f.notifier.sendErr = notifier.ErrSubscriptionGone

	if err := f.store.SaveGameState(ctx, &models.CachedGameState{
		GameID: "nhl-401", League: models.LeagueNHL, Status: models.StatusLive,
		HomeScore: 0, AwayScore: 0, Period: 1,
	}); err != nil {
		t.Fatalf("SaveGameState failed: %v", err)
	}

	f.scores.games[models.LeagueNHL] = []models.Game{liveGame("nhl-401", models.LeagueNHL, 1, 0, 1)}
	f.poller.RunCycle(ctx)

	subscribers, _ := f.store.GetGameSubscribers(ctx, "nhl-401")
	if len(subscribers) != 0 {
		t.Errorf("expected gone subscription pruned, got %v", subscribers)
	}
}

func TestRunCycle_UnsubscribedGameIgnored(t *testing.T) {
	f := newFixture()

	f.picker.leagues = []models.League{models.LeagueNHL}
	f.scores.games[models.LeagueNHL] = []models.Game{liveGame("nhl-999", models.LeagueNHL, 1, 0, 1)}
	f.poller.RunCycle(context.Background())

	if len(f.notifier.sent) != 0 || len(f.publisher.updates) != 0 {
		t.Error("expected no activity for a game without subscribers")
	}
}

func TestRunCycle_NoLeaguesNoFetch(t *testing.T) {
	f := newFixture()

	f.poller.RunCycle(context.Background())
	if f.scores.fetches != 0 {
		t.Errorf("expected no fetches with no leagues in window, got %d", f.scores.fetches)
	}
}

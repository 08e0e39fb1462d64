package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/scorewatch/notify-service/internal/cache"
	"github.com/scorewatch/notify-service/internal/config"
	"github.com/scorewatch/notify-service/internal/consumer"
	"github.com/scorewatch/notify-service/internal/handlers"
	"github.com/scorewatch/notify-service/internal/hub"
	"github.com/scorewatch/notify-service/internal/kv"
	"github.com/scorewatch/notify-service/internal/notifier"
	"github.com/scorewatch/notify-service/internal/poller"
	"github.com/scorewatch/notify-service/internal/providers/espn"
	"github.com/scorewatch/notify-service/internal/providers/openf1"
	"github.com/scorewatch/notify-service/internal/providers/pga"
	"github.com/scorewatch/notify-service/internal/publisher"
	"github.com/scorewatch/notify-service/internal/registry"
	"github.com/scorewatch/notify-service/internal/scheduler"
	"github.com/scorewatch/notify-service/internal/store"
)

func main() {
	fmt.Println("=== ScoreWatch Notify Service ===")

	cfg := config.Load()

	if cfg.Push.VAPIDPublicKey == "" || cfg.Push.VAPIDPrivateKey == "" {
		fmt.Println("⚠️  WARNING: VAPID keys not set - push delivery disabled")
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Connected to Redis")

	// Wire components
	kvStore := kv.NewRedis(redisClient)
	leagueRegistry := registry.New()
	subStore := store.New(kvStore, leagueRegistry.NotificationLeagues())
	scoreCache := cache.New(kvStore)

	espnClient := espn.New()
	f1Client := openf1.New()
	golfClient := pga.New()

	pushNotifier := notifier.New(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.Subscriber)
	streamPublisher := publisher.NewStreamPublisher(redisClient)
	pollScheduler := scheduler.New(subStore, leagueRegistry.NotificationLeagues())

	scorePoller := poller.New(leagueRegistry, pollScheduler, espnClient, subStore, pushNotifier, streamPublisher, scoreCache)
	scorePoller.SetInterval(cfg.Poller.Interval)

	broadcastHub := hub.New()
	streamConsumer := consumer.New(redisClient, broadcastHub, cfg.Stream.ConsumerGroup, cfg.Stream.ConsumerID, leagueRegistry.NotificationLeagues())

	// Background workers
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go broadcastHub.Run(workerCtx)
	go streamConsumer.Start(workerCtx)
	go scorePoller.Run(workerCtx)

	// Handlers
	healthHandler := handlers.NewHealthHandler(kvStore)
	subscriptionHandler := handlers.NewSubscriptionHandler(subStore, leagueRegistry, pushNotifier)
	gamesHandler := handlers.NewGamesHandler(subStore, leagueRegistry)
	scoresHandler := handlers.NewScoresHandler(leagueRegistry, espnClient, f1Client, golfClient, scoreCache)
	wsHandler := handlers.NewWSHandler(broadcastHub, workerCtx)

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/ws", wsHandler.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/subscribe", subscriptionHandler.Subscribe)
		r.Post("/unsubscribe", subscriptionHandler.Unsubscribe)
		r.Post("/notifications/test", subscriptionHandler.SendTestNotification)
		r.Get("/notifications/vapid-key", subscriptionHandler.VAPIDPublicKey)

		r.Get("/games/active", gamesHandler.GetActiveGames)
		r.Get("/games/{game_id}/state", gamesHandler.GetGameState)
		r.Get("/leagues", gamesHandler.GetLeagues)

		r.Get("/scores/{league}", scoresHandler.GetScoreboard)
		r.Get("/f1/latest", scoresHandler.GetF1Latest)
		r.Get("/golf/leaderboard", scoresHandler.GetGolfLeaderboard)

		r.Get("/ws/metrics", wsHandler.HandleMetrics)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("✓ Notify Service listening on %s\n", cfg.Server.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		fmt.Printf("❌ Server error: %v\n", err)
		os.Exit(1)

	case sig := <-shutdown:
		fmt.Printf("\n⚠️  Received signal: %v\n", sig)
		cancelWorkers()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("⚠️  Graceful shutdown failed: %v\n", err)
			if err := srv.Close(); err != nil {
				fmt.Printf("❌ Could not stop server: %v\n", err)
			}
		}
	}

	fmt.Println("✓ Shutdown complete")
}

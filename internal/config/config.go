// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strings"
	"time"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// PushConfig holds VAPID signing configuration
type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// PollerConfig holds score-polling configuration
type PollerConfig struct {
	Interval time.Duration
}

// StreamConfig holds broadcast stream consumer configuration
type StreamConfig struct {
	ConsumerGroup string
	ConsumerID    string
}

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Push   PushConfig
	Poller PollerConfig
	Stream StreamConfig
}

// Load reads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("SERVER_ADDR", ":8080"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Push: PushConfig{
			VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
			Subscriber:      getEnv("VAPID_SUBSCRIBER", "admin@scorewatch.dev"),
		},
		Poller: PollerConfig{
			Interval: getEnvDuration("POLL_INTERVAL", time.Minute),
		},
		Stream: StreamConfig{
			ConsumerGroup: getEnv("CONSUMER_GROUP", "notify-service"),
			ConsumerID:    getEnv("CONSUMER_ID", "notify-1"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis adapts a go-redis client to the Store interface
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed store
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Ping checks connectivity to the backing Redis instance
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return unavailable("PING", "", err)
	}
	return nil
}

// Get returns the value at key, or ErrNotFound
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", unavailable("GET", key, err)
	}
	return val, nil
}

// Set writes value at key with an optional TTL
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return unavailable("SET", key, err)
	}
	return nil
}

// Del removes keys
func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return unavailable("DEL", keys[0], err)
	}
	return nil
}

// Expire refreshes the TTL on a key
func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
		return unavailable("EXPIRE", key, err)
	}
	return nil
}

// SAdd adds members to a set
func (r *Redis) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.client.SAdd(ctx, key, toInterfaces(members)...).Err(); err != nil {
		return unavailable("SADD", key, err)
	}
	return nil
}

// SRem removes members from a set
func (r *Redis) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.client.SRem(ctx, key, toInterfaces(members)...).Err(); err != nil {
		return unavailable("SREM", key, err)
	}
	return nil
}

// SMembers returns all members of a set
func (r *Redis) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, unavailable("SMEMBERS", key, err)
	}
	return members, nil
}

// SCard returns the cardinality of a set
func (r *Redis) SCard(ctx context.Context, key string) (int64, error) {
	n, err := r.client.SCard(ctx, key).Result()
	if err != nil {
		return 0, unavailable("SCARD", key, err)
	}
	return n, nil
}

func toInterfaces(members []string) []interface{} {
	values := make([]interface{}, len(members))
	for i, m := range members {
		values[i] = m
	}
	return values
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, op, key, err)
}

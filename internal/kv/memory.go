package kv

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests. TTLs are honored lazily on
// read against an injectable clock.
type Memory struct {
	mu      sync.Mutex
	values  map[string]string
	sets    map[string]map[string]struct{}
	expires map[string]time.Time

	// Now is the clock used for expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		values:  make(map[string]string),
		sets:    make(map[string]map[string]struct{}),
		expires: make(map[string]time.Time),
		Now:     time.Now,
	}
}

// Get returns the value at key, or ErrNotFound
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purge(key)
	val, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

// Set writes value at key with an optional TTL
func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	if ttl > 0 {
		m.expires[key] = m.Now().Add(ttl)
	} else {
		delete(m.expires, key)
	}
	return nil
}

// Del removes keys
func (m *Memory) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.values, key)
		delete(m.sets, key)
		delete(m.expires, key)
	}
	return nil
}

// Expire refreshes the TTL on a key
func (m *Memory) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purge(key)
	_, hasValue := m.values[key]
	_, hasSet := m.sets[key]
	if hasValue || hasSet {
		m.expires[key] = m.Now().Add(ttl)
	}
	return nil
}

// SAdd adds members to a set
func (m *Memory) SAdd(ctx context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purge(key)
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return nil
}

// SRem removes members from a set
func (m *Memory) SRem(ctx context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purge(key)
	set, ok := m.sets[key]
	if !ok {
		return nil
	}
	for _, member := range members {
		delete(set, member)
	}
	if len(set) == 0 {
		delete(m.sets, key)
		delete(m.expires, key)
	}
	return nil
}

// SMembers returns all members of a set
func (m *Memory) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purge(key)
	set := m.sets[key]
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	return members, nil
}

// SCard returns the cardinality of a set
func (m *Memory) SCard(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purge(key)
	return int64(len(m.sets[key])), nil
}

// purge drops key if its TTL has passed. Caller holds the lock.
func (m *Memory) purge(key string) {
	deadline, ok := m.expires[key]
	if !ok || m.Now().Before(deadline) {
		return
	}
	delete(m.values, key)
	delete(m.sets, key)
	delete(m.expires, key)
}

package store

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is an in-memory implementation of KV for tests and local runs.
// Expired entries are evicted lazily on access.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewMemory creates a new in-memory KV store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
	}
}

// lookup returns the live entry for key, evicting it first if expired.
// Callers must hold the mutex.
func (m *Memory) lookup(key string) (entry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return entry{}, false
	}

	if e.expired(time.Now()) {
		delete(m.entries, key)

		return entry{}, false
	}

	return e, true
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return "", ErrKeyNotFound
	}

	return e.value, nil
}

func (m *Memory) SetWithExpiry(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}

	return nil
}

func (m *Memory) SetIfAbsent(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(key); ok {
		return false, nil
	}

	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}

	return true, nil
}

func (m *Memory) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return false, nil
	}

	e.expiresAt = time.Now().Add(ttl)
	m.entries[key] = e

	return true, nil
}

func (m *Memory) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		m.entries[key] = entry{value: "1", expiresAt: time.Now().Add(ttl)}

		return 1, nil
	}

	count, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, err
	}

	count++
	e.value = strconv.FormatInt(count, 10)
	m.entries[key] = e

	return count, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)

	return nil
}

func (m *Memory) Ping(_ context.Context) error {
	return nil
}

// Compile-time check.
var _ KV = (*Memory)(nil)

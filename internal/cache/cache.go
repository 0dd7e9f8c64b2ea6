package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Cache stores JSON-encodable values by key. Last write wins.
type Cache interface {
	// Get decodes the value for key into dest and reports whether it existed.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}

// InsightKey is the cache key for a product's generated insights.
func InsightKey(productID uint) string {
	return fmt.Sprintf("insights:%d", productID)
}

// Memory is a process-local Cache. Entries never expire and are lost on restart.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.RLock()
	raw, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	m.items[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Len is the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Options configures New.
type Options struct {
	RedisURL string
	TTL      time.Duration
}

// New returns a Redis cache when RedisURL is set, otherwise a Memory cache.
func New(ctx context.Context, opts Options) (Cache, error) {
	if opts.RedisURL == "" {
		return NewMemory(), nil
	}
	return NewRedisFromURL(ctx, opts.RedisURL, opts.TTL)
}

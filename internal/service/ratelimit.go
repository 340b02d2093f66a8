package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// CounterStore is a shared counter with per-key TTL. It backs the rate
// limiter, so the gateway can scale horizontally by pointing every
// instance at the same store.
type CounterStore interface {
	// Incr bumps the counter for key and returns the new value. The
	// first increment of a window starts its TTL.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// FixedWindowLimiter allows up to limit events per key per window.
type FixedWindowLimiter struct {
	store  CounterStore
	limit  int64
	window time.Duration
}

// NewFixedWindowLimiter creates a rate limiter over the given store.
func NewFixedWindowLimiter(store CounterStore, limit int64, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{store: store, limit: limit, window: window}
}

// Allow reports whether the key may proceed. Each call counts one
// event.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return false, fmt.Errorf("increment counter: %w", err)
	}
	return n <= l.limit, nil
}

// MemoryCounterStore is an in-process CounterStore. It is safe for
// concurrent use; expired windows are removed by a background sweep.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
}

type windowCounter struct {
	count   int64
	expires time.Time
}

// NewMemoryCounterStore creates an in-memory counter store and starts
// its cleanup goroutine.
func NewMemoryCounterStore() *MemoryCounterStore {
	s := &MemoryCounterStore{counters: make(map[string]*windowCounter)}
	go s.cleanup()
	return s
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c, ok := s.counters[key]
	if !ok || now.After(c.expires) {
		c = &windowCounter{expires: now.Add(window)}
		s.counters[key] = c
	}
	c.count++
	return c.count, nil
}

// cleanup runs periodically and removes expired windows.
func (s *MemoryCounterStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for key, c := range s.counters {
			if now.After(c.expires) {
				delete(s.counters, key)
			}
		}
		s.mu.Unlock()
	}
}

// RedisCounterStore is a CounterStore backed by Redis, shared across
// gateway instances.
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore creates a Redis-backed counter store.
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := s.client.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.client.Expire(ctx, "ratelimit:"+key, window).Err(); err != nil {
			return 0, err
		}
	}
	return n, nil
}

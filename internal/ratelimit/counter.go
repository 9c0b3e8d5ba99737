// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ratelimit provides fixed-window counters and the layered policy
// that throttles verification emails.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter increments a named fixed-window counter and returns the count
// within the current window, including this call.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// MemoryCounter keeps counters in process memory.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	count   int64
	expires time.Time
}

// NewMemoryCounter returns an empty in-memory counter store.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: make(map[string]*window), now: time.Now}
}

func (m *MemoryCounter) Incr(ctx context.Context, key string, d time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.expires) {
		w = &window{expires: now.Add(d)}
		m.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// PurgeExpired drops finished windows and returns how many were removed.
func (m *MemoryCounter) PurgeExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for k, w := range m.windows {
		if !now.Before(w.expires) {
			delete(m.windows, k)
			removed++
		}
	}
	return removed, nil
}

// RedisCounter keeps counters in Valkey so limits hold across restarts.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

// NewRedisCounter returns a counter store on client.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, prefix: "ratelimit:"}
}

func (r *RedisCounter) Incr(ctx context.Context, key string, d time.Duration) (int64, error) {
	k := r.prefix + key
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, d)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rate counter %s: %w", key, err)
	}
	return incr.Val(), nil
}

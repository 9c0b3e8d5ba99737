package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localgame/internal/cache"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newMemory(at time.Time) (*MemoryCounter, *fakeClock) {
	clock := &fakeClock{t: at}
	m := NewMemoryCounter()
	m.now = clock.now
	return m, clock
}

func TestMemoryCounterWindow(t *testing.T) {
	m, clock := newMemory(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := m.Incr(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	clock.t = clock.t.Add(time.Minute)
	n, err := m.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "new window starts over")

	clock.t = clock.t.Add(2 * time.Minute)
	removed, err := m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestEmailPolicyPerMinute(t *testing.T) {
	m, clock := newMemory(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	p := NewEmailPolicy(m)
	ctx := context.Background()

	require.NoError(t, p.Allow(ctx, "a@example.com"))
	err := p.Allow(ctx, "A@example.com")
	require.ErrorIs(t, err, ErrLimited)
	assert.Equal(t, DefaultEmailRules[0].Message, err.Error())

	// Another address is unaffected.
	assert.NoError(t, p.Allow(ctx, "b@example.com"))

	clock.t = clock.t.Add(time.Minute)
	assert.NoError(t, p.Allow(ctx, "a@example.com"))
}

func TestEmailPolicyPerHour(t *testing.T) {
	m, clock := newMemory(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	p := NewEmailPolicy(m)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Allow(ctx, "a@example.com"), "send %d", i)
		clock.t = clock.t.Add(61 * time.Second)
	}
	err := p.Allow(ctx, "a@example.com")
	require.ErrorIs(t, err, ErrLimited)
	assert.Equal(t, DefaultEmailRules[1].Message, err.Error())
}

func TestEmailPolicyGlobal(t *testing.T) {
	m, _ := newMemory(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	p := &EmailPolicy{counter: m, rules: []Rule{
		{Name: "global", Max: 2, Window: time.Hour, Global: true, Message: "full"},
	}}
	ctx := context.Background()

	require.NoError(t, p.Allow(ctx, "a@example.com"))
	require.NoError(t, p.Allow(ctx, "b@example.com"))
	assert.ErrorIs(t, p.Allow(ctx, "c@example.com"), ErrLimited)
}

func TestRedisCounter(t *testing.T) {
	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}
	client, err := cache.ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"), 15)
	if err != nil {
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}
	ctx := context.Background()
	t.Cleanup(func() {
		client.Del(ctx, "ratelimit:test-key")
		client.Close()
	})

	c := NewRedisCounter(client)
	client.Del(ctx, "ratelimit:test-key")
	n1, err := c.Incr(ctx, "test-key", time.Minute)
	require.NoError(t, err)
	n2, err := c.Incr(ctx, "test-key", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n1)
	assert.Equal(t, int64(2), n2)

	ttl, err := client.TTL(ctx, "ratelimit:test-key").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

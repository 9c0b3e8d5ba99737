// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// sweepInterval is how often idle client buckets are dropped.
	sweepInterval = 5 * time.Minute
	// retryAfter is the Retry-After value sent with a 429, in seconds.
	retryAfter = 60
)

type bucket struct {
	*rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket: each client IP may burst up
// to limit requests, refilled evenly over window.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string]*bucket

	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter allowing limit requests per window for
// each client. Call Stop to end its background sweep.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   max(limit, 1),
		window:  window,
		clients: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go rl.sweep(sweepInterval)
	return rl
}

func (rl *RateLimiter) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			rl.cleanup()
		case <-rl.done:
			return
		}
	}
}

// Stop ends the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow takes one token from key's bucket, creating the bucket on first use.
func (rl *RateLimiter) allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	b, ok := rl.clients[key]
	if !ok {
		refill := rate.Every(rl.window / time.Duration(rl.limit))
		b = &bucket{Limiter: rate.NewLimiter(refill, rl.limit)}
		rl.clients[key] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	return b.AllowN(now, 1)
}

// cleanup forgets clients not seen for a full window; their buckets would
// be full again anyway.
func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// Middleware answers 429 once the client's bucket is empty.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.allow(clientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeDetail(w, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
	})
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote host.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

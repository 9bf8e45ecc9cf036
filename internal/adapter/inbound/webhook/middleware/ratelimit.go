package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	maxBuckets    = 10000
	bucketMaxIdle = 10 * time.Minute
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket limiter.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	capacity   float64
	perNano    float64
	trustProxy bool
	now        func() time.Time
}

// NewRateLimiter allows requestsPerMinute per client, refilled continuously.
// trustProxy takes the client address from X-Forwarded-For.
func NewRateLimiter(requestsPerMinute int, trustProxy bool) *RateLimiter {
	capacity := float64(requestsPerMinute)
	return &RateLimiter{
		buckets:    make(map[string]*bucket),
		capacity:   capacity,
		perNano:    capacity / float64(time.Minute),
		trustProxy: trustProxy,
		now:        time.Now,
	}
}

// Allow consumes one token for client and reports whether one was available.
// New clients are refused once maxBuckets are tracked.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[client]
	if !ok {
		if len(rl.buckets) >= maxBuckets {
			return false
		}
		b = &bucket{tokens: rl.capacity, lastSeen: now}
		rl.buckets[client] = b
	}

	b.tokens = min(rl.capacity, b.tokens+float64(now.Sub(b.lastSeen))*rl.perNano)
	b.lastSeen = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-bucketMaxIdle)
	for client, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, client)
		}
	}
}

// Run evicts idle buckets every few minutes until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(remoteIP(r, rl.trustProxy)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// remoteIP returns the client address, preferring the first X-Forwarded-For
// hop when trustProxy is set.
func remoteIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
	}
	addr := r.RemoteAddr
	if i := strings.LastIndexByte(addr, ':'); i != -1 {
		return addr[:i]
	}
	return addr
}

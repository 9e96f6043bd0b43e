package http

import (
	"sync"
	"time"
)

const (
	idleBucketTTL   = 1 * time.Hour
	cleanupInterval = 30 * time.Minute
)

// bucket holds a client's fractional token balance as of updated.
type bucket struct {
	tokens  float64
	updated time.Time
}

// RateLimiter is a per-client token bucket: each client may burst up to
// capacity requests and earns capacity tokens back per window, continuously.
type RateLimiter struct {
	mu       sync.Mutex
	capacity float64
	perSec   float64
	window   time.Duration
	buckets  map[string]*bucket
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		capacity: float64(capacity),
		window:   window,
		buckets:  make(map[string]*bucket),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if window > 0 {
		rl.perSec = float64(capacity) / window.Seconds()
	}
	go rl.cleanupLoop()
	return rl
}

func (r *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup()
		case <-r.stop:
			return
		}
	}
}

// cleanup forgets clients idle long enough for their bucket to be full again.
func (r *RateLimiter) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for client, b := range r.buckets {
		if now.Sub(b.updated) > max(idleBucketTTL, r.window) {
			delete(r.buckets, client)
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// refill brings b up to date. Callers hold r.mu.
func (r *RateLimiter) refill(b *bucket, now time.Time) {
	elapsed := now.Sub(b.updated).Seconds()
	if elapsed > 0 {
		b.tokens = min(r.capacity, b.tokens+elapsed*r.perSec)
		b.updated = now
	}
}

// Allow takes one token from client's bucket and reports whether one was
// available.
func (r *RateLimiter) Allow(client string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b, ok := r.buckets[client]
	if !ok {
		b = &bucket{tokens: r.capacity, updated: now}
		r.buckets[client] = b
	}
	r.refill(b, now)

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RetryAfter is the time until client earns its next token.
func (r *RateLimiter) RetryAfter(client string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[client]
	if !ok || r.perSec == 0 {
		return 0
	}
	r.refill(b, r.now())
	if b.tokens >= 1 {
		return 0
	}
	return time.Duration((1 - b.tokens) / r.perSec * float64(time.Second))
}

// Clients returns the number of tracked clients.
func (r *RateLimiter) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

package ratelimit

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a per-key token bucket. The number of tracked keys is bounded;
// the least recently seen key is evicted first.
type Limiter struct {
	mu       sync.Mutex
	buckets  *lru.Cache[string, *bucket]
	capacity float64
	rate     float64 // tokens per second
	now      func() time.Time
}

// New creates a limiter allowing burst requests at once, refilled at rate per second.
func New(rate float64, burst int, maxKeys int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	cache, _ := lru.New[string, *bucket](maxKeys)
	return &Limiter{buckets: cache, capacity: float64(burst), rate: rate, now: time.Now}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets.Get(key)
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets.Add(key, b)
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// RetryAfter estimates the wait until the next token for a drained bucket.
func (l *Limiter) RetryAfter() time.Duration {
	if l.rate <= 0 {
		return time.Minute
	}
	return time.Duration(float64(time.Second) / l.rate)
}

package limiter

import (
	"sync"
	"time"
)

// Limiter throttles view actions per client.
// Every action that can reach the country source passes through Allow first.
type Limiter interface {
	// Allow reports whether the client identified by key may run another action
	Allow(key string) bool

	// Close releases connections held by the limiter
	Close() error
}

// idleBucketTTL is how long an untouched bucket is kept
const idleBucketTTL = 5 * time.Minute

// tokenBucket tracks the allowance of a single client.
// Tokens refill continuously at refillRate up to capacity; one action costs one token.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64
	lastRefill time.Time
}

func newTokenBucket(rate, capacity float64, now time.Time) *tokenBucket {
	// Fractional rates (0.2 = one action per 5s) still allow a first action
	capacity = max(capacity, 1.0)
	return &tokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: rate,
		lastRefill: now,
	}
}

func (b *tokenBucket) take(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.lastRefill).Seconds(); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
		b.lastRefill = now
	}

	if b.tokens >= 1.0 {
		b.tokens--
		return true
	}
	return false
}

func (b *tokenBucket) idleSince(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastRefill.Before(cutoff)
}

// MemoryLimiter keeps one token bucket per client in process memory.
// Suitable for a single server instance.
type MemoryLimiter struct {
	buckets  sync.Map // client key -> *tokenBucket
	rate     float64
	capacity float64
	now      func() time.Time

	cleanupMu   sync.Mutex
	lastCleanup time.Time
}

// NewMemoryLimiter creates an in-memory limiter allowing actionsPerSecond per client.
// The burst size equals one second worth of actions.
func NewMemoryLimiter(actionsPerSecond float64) *MemoryLimiter {
	return &MemoryLimiter{
		rate:        actionsPerSecond,
		capacity:    actionsPerSecond,
		now:         time.Now,
		lastCleanup: time.Now(),
	}
}

// Allow implements Limiter
func (l *MemoryLimiter) Allow(key string) bool {
	now := l.now()
	allowed := l.bucket(key, now).take(now)
	l.maybeCleanup(now)
	return allowed
}

func (l *MemoryLimiter) bucket(key string, now time.Time) *tokenBucket {
	if b, ok := l.buckets.Load(key); ok {
		return b.(*tokenBucket)
	}
	actual, _ := l.buckets.LoadOrStore(key, newTokenBucket(l.rate, l.capacity, now))
	return actual.(*tokenBucket)
}

// maybeCleanup drops buckets of clients idle for idleBucketTTL,
// at most once per idleBucketTTL
func (l *MemoryLimiter) maybeCleanup(now time.Time) {
	l.cleanupMu.Lock()
	defer l.cleanupMu.Unlock()

	if now.Sub(l.lastCleanup) < idleBucketTTL {
		return
	}

	cutoff := now.Add(-idleBucketTTL)
	l.buckets.Range(func(key, value any) bool {
		if value.(*tokenBucket).idleSince(cutoff) {
			l.buckets.Delete(key)
		}
		return true
	})
	l.lastCleanup = now
}

// clients returns how many buckets are currently tracked
func (l *MemoryLimiter) clients() int {
	n := 0
	l.buckets.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close implements Limiter. Nothing to release for the in-memory variant.
func (l *MemoryLimiter) Close() error {
	return nil
}

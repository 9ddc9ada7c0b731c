package limiter

import (
	"context"
	"math"
	"sync"
	"time"
)

// Limiter decides whether a client may make another request
type Limiter interface {
	// Allow reports whether the client identified by key may proceed.
	// A non-nil error means the decision could not be made reliably;
	// callers fail open and log it.
	Allow(ctx context.Context, key string) (bool, error)

	Close() error
}

// idleBucketTTL is how long an untouched bucket is kept before it is swept
const idleBucketTTL = 5 * time.Minute

// bucket is a token bucket for a single client
// It holds up to capacity tokens and refills at rate tokens per second.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// MemoryLimiter is a per-client token bucket limiter for single-instance deployments
// Each client may burst up to limit requests and regains limit tokens per window.
type MemoryLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	capacity  float64
	rate      float64 // tokens per second
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryLimiter allows limit requests per window for each client
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}

	return &MemoryLimiter{
		buckets:   make(map[string]*bucket),
		capacity:  float64(limit),
		rate:      float64(limit) / window.Seconds(),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastSeen: now}
		l.buckets[key] = b
	}

	// Refill for the time since the client was last seen
	elapsed := now.Sub(b.lastSeen).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.rate)
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// sweep drops idle buckets at most once per idleBucketTTL
// The caller holds l.mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleBucketTTL {
		return
	}

	threshold := now.Add(-idleBucketTTL)
	for key, b := range l.buckets {
		if b.lastSeen.Before(threshold) {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// Len returns the number of tracked clients
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *MemoryLimiter) Close() error {
	return nil
}

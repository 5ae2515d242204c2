package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter hands out one token bucket per key. Upstream operations and inbound client
// addresses are both keys. Buckets created on demand are dropped by Sweep once idle for
// IdleTTL; buckets installed with SetLimit are kept.
type KeyedLimiter struct {
	limiters map[string]*keyedEntry
	mu       sync.RWMutex
	defaults Config
	now      func() time.Time
}

type keyedEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
	pinned   bool
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL of zero keeps buckets forever.
	IdleTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5,
		BurstSize:         10,
	}
}

type Option func(k *KeyedLimiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(k *KeyedLimiter) {
		k.now = now
	}
}

func NewKeyedLimiter(config Config, opts ...Option) *KeyedLimiter {
	k := &KeyedLimiter{
		limiters: make(map[string]*keyedEntry),
		defaults: config,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func NewKeyedLimiterWithDefaults() *KeyedLimiter {
	return NewKeyedLimiter(DefaultConfig())
}

func (k *KeyedLimiter) Limiter(key string) *rate.Limiter {
	now := k.now().UnixNano()

	k.mu.RLock()
	entry, exists := k.limiters[key]
	k.mu.RUnlock()

	if exists {
		entry.lastSeen.Store(now)
		return entry.limiter
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if entry, exists = k.limiters[key]; !exists {
		entry = &keyedEntry{
			limiter: rate.NewLimiter(rate.Limit(k.defaults.RequestsPerSecond), k.defaults.BurstSize),
		}
		k.limiters[key] = entry
	}
	entry.lastSeen.Store(now)
	return entry.limiter
}

func (k *KeyedLimiter) SetLimit(key string, rps float64, burst int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry := &keyedEntry{limiter: rate.NewLimiter(rate.Limit(rps), burst), pinned: true}
	entry.lastSeen.Store(k.now().UnixNano())
	k.limiters[key] = entry
}

// Wait blocks until key may proceed or ctx is done.
func (k *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return k.Limiter(key).Wait(ctx)
}

// Allow reports whether key may proceed now. It satisfies echo's middleware.RateLimiterStore.
func (k *KeyedLimiter) Allow(key string) (bool, error) {
	return k.Limiter(key).Allow(), nil
}

func (k *KeyedLimiter) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.limiters)
}

// Sweep drops buckets idle for at least IdleTTL and returns how many were removed.
func (k *KeyedLimiter) Sweep() int {
	if k.defaults.IdleTTL <= 0 {
		return 0
	}
	cutoff := k.now().Add(-k.defaults.IdleTTL).UnixNano()

	k.mu.Lock()
	defer k.mu.Unlock()

	removed := 0
	for key, entry := range k.limiters {
		if !entry.pinned && entry.lastSeen.Load() <= cutoff {
			delete(k.limiters, key)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (k *KeyedLimiter) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 || k.defaults.IdleTTL <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			k.Sweep()
		}
	}
}

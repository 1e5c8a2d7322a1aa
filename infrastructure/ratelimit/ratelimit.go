package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"stocksence/infrastructure/clock"
)

// Limiter is a per-key sliding window attempt counter.
type Limiter struct {
	mu       sync.Mutex
	clock    clock.Clock
	log      *zap.Logger
	attempts map[string][]time.Time
}

func New(c clock.Clock, log *zap.Logger) *Limiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Limiter{clock: c, log: log, attempts: make(map[string][]time.Time)}
}

// Check prunes attempts older than window, rejects when maxAttempts remain,
// otherwise records this attempt.
func (l *Limiter) Check(key string, maxAttempts int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	valid := prune(l.attempts[key], now, window)
	if len(valid) >= maxAttempts {
		l.attempts[key] = valid
		l.log.Warn("RATE_LIMIT_EXCEEDED", zap.String("key", key), zap.Int("attempts", len(valid)))
		return false
	}
	l.attempts[key] = append(valid, now)
	return true
}

// Reset clears the key's history.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// Sweep drops keys with no attempts inside window and returns how many were removed.
func (l *Limiter) Sweep(window time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	removed := 0
	for key, ts := range l.attempts {
		valid := prune(ts, now, window)
		if len(valid) == 0 {
			delete(l.attempts, key)
			removed++
			continue
		}
		l.attempts[key] = valid
	}
	return removed
}

func prune(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	out := ts[:0:0]
	for _, t := range ts {
		if now.Sub(t) < window {
			out = append(out, t)
		}
	}
	return out
}

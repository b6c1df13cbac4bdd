package auth

import (
	"context"
	"sync"
	"time"
)

// DefaultLoginCooldown is the minimum interval between login attempts for a
// single email.
const DefaultLoginCooldown = 5 * time.Second

// LoginLimiter enforces a per-identifier cooldown on the credential path.
// The attempt map is shared across request goroutines and guarded by a
// mutex; a rejected attempt does not refresh the window, so the cooldown
// clock always runs from the first recorded attempt.
type LoginLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	attempts map[string]time.Time
	now      func() time.Time
}

// NewLoginLimiter constructs a limiter. A zero window falls back to
// DefaultLoginCooldown.
func NewLoginLimiter(window time.Duration) *LoginLimiter {
	if window <= 0 {
		window = DefaultLoginCooldown
	}
	return &LoginLimiter{
		window:   window,
		attempts: make(map[string]time.Time),
		now:      time.Now,
	}
}

// CanAttempt reports whether the identifier may attempt a login now, and
// records the attempt when allowed.
func (l *LoginLimiter) CanAttempt(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	last, ok := l.attempts[id]
	if !ok || now.Sub(last) >= l.window {
		l.attempts[id] = now
		return true
	}
	return false
}

// TimeUntilNext returns how long the identifier must wait before the next
// allowed attempt, zero when it may attempt immediately.
func (l *LoginLimiter) TimeUntilNext(id string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.attempts[id]
	if !ok {
		return 0
	}
	remaining := l.window - l.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Run evicts stale identifiers until ctx is cancelled. Identifiers are
// client supplied strings, so the map must not grow without bound.
func (l *LoginLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.window * 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}

// Prune removes identifiers whose cooldown has fully elapsed.
func (l *LoginLimiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, last := range l.attempts {
		if now.Sub(last) >= l.window {
			delete(l.attempts, id)
		}
	}
}

func (l *LoginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

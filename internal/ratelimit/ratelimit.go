// Package ratelimit provides per-identity fixed-window rate limiting.
// A window admits up to maxPerWindow calls for an identity; once
// exceeded, calls are denied until the window rolls over.
package ratelimit

import (
	"sync"
	"time"
)

// windowState tracks one identity's current window. Guarded by its own
// mutex so concurrent TryConsume calls for the same identity cannot
// lose updates and overrun the limit.
type windowState struct {
	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// consume attempts to take one slot from the window, rolling the window
// over first when it has expired.
func (w *windowState) consume(now time.Time, limit int, window time.Duration) (allowed bool, remaining int, resetTime time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.windowStart) >= window {
		w.windowStart = now
		w.count = 0
	}
	resetTime = w.windowStart.Add(window)

	if w.count >= limit {
		return false, 0, resetTime
	}
	w.count++
	return true, limit - w.count, resetTime
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages fixed-window rate limiting for multiple identities.
type Limiter struct {
	states     map[string]*windowState
	mu         sync.RWMutex
	config     *Config
	lastAccess map[string]time.Time
	accessMu   sync.RWMutex

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// NewLimiter creates a new rate limiter with the given configuration.
// A nil config uses defaults.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := &Limiter{
		states:     make(map[string]*windowState),
		config:     config,
		lastAccess: make(map[string]time.Time),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// TryConsume reports whether the identity may perform one more action at
// the given time. Calls within the current window succeed while the
// count stays at or under MaxPerWindow; once exceeded, calls fail until
// the window rolls over.
func (l *Limiter) TryConsume(identity string, now time.Time) bool {
	allowed, _ := l.allowAt(identity, now)
	return allowed
}

// Allow is TryConsume against the wall clock, returning rate limit
// information alongside the decision.
func (l *Limiter) Allow(identity string) (bool, Info) {
	return l.allowAt(identity, time.Now())
}

func (l *Limiter) allowAt(identity string, now time.Time) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	state := l.getState(identity)

	l.accessMu.Lock()
	l.lastAccess[identity] = now
	l.accessMu.Unlock()

	allowed, remaining, resetTime := state.consume(now, l.config.MaxPerWindow, l.config.Window)

	var retryAfter time.Duration
	if !allowed {
		retryAfter = resetTime.Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      l.config.MaxPerWindow,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

// getState gets or creates the window state for an identity.
func (l *Limiter) getState(identity string) *windowState {
	l.mu.RLock()
	state, exists := l.states[identity]
	l.mu.RUnlock()

	if exists {
		return state
	}

	state = &windowState{}

	l.mu.Lock()
	// Double-check after acquiring write lock
	if existing, exists := l.states[identity]; exists {
		l.mu.Unlock()
		return existing
	}
	l.states[identity] = state
	l.mu.Unlock()

	return state
}

// cleanup removes idle identity states to prevent unbounded growth.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupStates()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupStates removes identities not seen for over an hour.
func (l *Limiter) cleanupStates() {
	cutoff := time.Now().Add(-1 * time.Hour)

	l.accessMu.RLock()
	keysToCheck := make([]string, 0, len(l.lastAccess))
	for key := range l.lastAccess {
		keysToCheck = append(keysToCheck, key)
	}
	l.accessMu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.accessMu.Lock()
	defer l.accessMu.Unlock()

	for _, key := range keysToCheck {
		if lastAccess, exists := l.lastAccess[key]; exists && lastAccess.Before(cutoff) {
			delete(l.states, key)
			delete(l.lastAccess, key)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}

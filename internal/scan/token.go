package scan

import "sync"

// TokenTracker issues monotonically increasing request tokens per key
// (typically a tab identifier) and decides whether a finished scan's
// result may still be applied. A result is applied only when its token
// matches the latest issued for the key, so a stale scan that resolves
// late can never overwrite a newer one.
type TokenTracker struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// NewTokenTracker creates an empty tracker.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{latest: make(map[string]uint64)}
}

// Issue returns the next token for the key. Each call supersedes all
// previously issued tokens for that key.
func (t *TokenTracker) Issue(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[key]++
	return t.latest[key]
}

// Latest returns the most recently issued token for the key, or zero
// when none has been issued.
func (t *TokenTracker) Latest(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[key]
}

// Apply reports whether a result correlated with the given token is
// still current. Stale tokens return false and the result must be
// discarded.
func (t *TokenTracker) Apply(key string, token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return token != 0 && token == t.latest[key]
}

// Forget drops tracking state for a key, e.g. when a tab closes.
func (t *TokenTracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.latest, key)
}

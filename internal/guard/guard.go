// Package guard provides the single-flight issuance lock. One guard exists
// per wallet session; it is advisory, client-side reentrancy control, not a
// ledger-level lock.
package guard

import "sync"

// Guard is a non-blocking single-flight lock.
//
// TryAcquire never waits: it either takes the lock or reports that it is
// held. Release is idempotent. The zero value is ready to use.
type Guard struct {
	mu   sync.Mutex
	held bool
}

// TryAcquire takes the lock if it is free and returns true. Returns false
// immediately if the lock is already held.
func (g *Guard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		return false
	}
	g.held = true
	return true
}

// Release clears the held state. Safe to call when the lock is not held.
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = false
}

// Held reports whether the lock is currently held.
func (g *Guard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

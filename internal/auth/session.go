package auth

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Errors
var (
	ErrSessionUnknown = errors.New("session unknown")
	ErrSessionExpired = errors.New("session expired")
)

type sessionEntry struct {
	playerID  int
	issuedAt  time.Time
	expiresAt time.Time
}

// SessionCache maps bearer tokens to player identities. Sessions live only in
// process memory, so a restart revokes everything.
type SessionCache struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
	ttl     time.Duration
}

// NewSessionCache creates a cache whose tokens expire after ttl.
func NewSessionCache(ttl time.Duration) *SessionCache {
	return &SessionCache{
		entries: make(map[string]*sessionEntry),
		ttl:     ttl,
	}
}

// Create mints a session token for playerID and returns it with its absolute
// expiry.
func (sc *SessionCache) Create(playerID int) (string, time.Time) {
	token := uuid.NewString()
	now := time.Now()
	expires := now.Add(sc.ttl)

	sc.mu.Lock()
	sc.entries[token] = &sessionEntry{playerID: playerID, issuedAt: now, expiresAt: expires}
	sc.mu.Unlock()
	return token, expires
}

// Verify resolves a token to its player id.
func (sc *SessionCache) Verify(token string) (int, error) {
	sc.mu.RLock()
	e, ok := sc.entries[token]
	sc.mu.RUnlock()

	if !ok {
		return 0, ErrSessionUnknown
	}
	if time.Now().After(e.expiresAt) {
		sc.Revoke(token)
		return 0, ErrSessionExpired
	}
	return e.playerID, nil
}

// Revoke destroys a single session. Unknown tokens are a no-op.
func (sc *SessionCache) Revoke(token string) {
	sc.mu.Lock()
	delete(sc.entries, token)
	sc.mu.Unlock()
}

// RevokeAllFor destroys every session belonging to playerID.
func (sc *SessionCache) RevokeAllFor(playerID int) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for token, e := range sc.entries {
		if e.playerID == playerID {
			delete(sc.entries, token)
		}
	}
}

// CleanupExpired drops sessions past their expiry and returns how many.
func (sc *SessionCache) CleanupExpired() int {
	now := time.Now()

	sc.mu.Lock()
	defer sc.mu.Unlock()
	removed := 0
	for token, e := range sc.entries {
		if now.After(e.expiresAt) {
			delete(sc.entries, token)
			removed++
		}
	}
	return removed
}

// StartSweeper runs CleanupExpired on a fixed interval.
func (sc *SessionCache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[AUTH] Session sweeper stopping")
				return
			case <-ticker.C:
				if n := sc.CleanupExpired(); n > 0 {
					log.Printf("[AUTH] Removed %d expired sessions", n)
				}
			}
		}
	}()
}

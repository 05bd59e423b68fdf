package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"math/big"
	"sync"
	"time"
)

// Errors
var (
	ErrNonceUnknown  = errors.New("nonce unknown")
	ErrNonceConsumed = errors.New("nonce already consumed")
	ErrNonceExpired  = errors.New("nonce expired")
	ErrNonceMismatch = errors.New("nonce bound to a different player")
)

// 33 chars over the 62-symbol alphabet carry just over 196 bits, clearing the
// 192-bit floor a 32-char value falls short of.
const nonceLength = 33

// purge horizon for the background sweep; well past the verify TTL
const noncePurgeAge = 5 * time.Minute

type nonceEntry struct {
	playerID  int
	createdAt time.Time
	consumed  bool
}

// NonceCache holds one-shot login challenges. Process-wide singleton guarded
// by a single lock.
type NonceCache struct {
	mu      sync.Mutex
	entries map[string]*nonceEntry
	ttl     time.Duration
}

// NewNonceCache creates a cache whose nonces expire after ttl.
func NewNonceCache(ttl time.Duration) *NonceCache {
	return &NonceCache{
		entries: make(map[string]*nonceEntry),
		ttl:     ttl,
	}
}

// Create mints a fresh alphanumeric nonce bound to playerID.
func (nc *NonceCache) Create(playerID int) (string, error) {
	value, err := randomAlnum(nonceLength)
	if err != nil {
		return "", err
	}

	nc.mu.Lock()
	nc.entries[value] = &nonceEntry{playerID: playerID, createdAt: time.Now()}
	nc.mu.Unlock()
	return value, nil
}

// VerifyAndConsume checks that the nonce exists, belongs to playerID, is
// unconsumed and within its TTL, then marks it consumed. A second call with
// the same nonce always fails.
func (nc *NonceCache) VerifyAndConsume(nonce string, playerID int) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	e, ok := nc.entries[nonce]
	if !ok {
		return ErrNonceUnknown
	}
	if e.consumed {
		return ErrNonceConsumed
	}
	if time.Since(e.createdAt) > nc.ttl {
		return ErrNonceExpired
	}
	if e.playerID != playerID {
		return ErrNonceMismatch
	}
	e.consumed = true
	return nil
}

// StartSweeper purges entries older than five minutes on a fixed interval.
func (nc *NonceCache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[AUTH] Nonce sweeper stopping")
				return
			case <-ticker.C:
				if n := nc.purge(); n > 0 {
					log.Printf("[AUTH] Purged %d stale nonces", n)
				}
			}
		}
	}()
}

func (nc *NonceCache) purge() int {
	cutoff := time.Now().Add(-noncePurgeAge)

	nc.mu.Lock()
	defer nc.mu.Unlock()
	purged := 0
	for value, e := range nc.entries {
		if e.createdAt.Before(cutoff) {
			delete(nc.entries, value)
			purged++
		}
	}
	return purged
}

// randomAlnum draws length characters from crypto/rand over [A-Za-z0-9].
func randomAlnum(length int) (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

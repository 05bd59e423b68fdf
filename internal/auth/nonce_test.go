package auth

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonceSingleUse(t *testing.T) {
	nc := NewNonceCache(time.Minute)

	nonce, err := nc.Create(7)
	require.NoError(t, err)
	assert.Len(t, nonce, nonceLength)

	require.NoError(t, nc.VerifyAndConsume(nonce, 7))
	assert.ErrorIs(t, nc.VerifyAndConsume(nonce, 7), ErrNonceConsumed)
}

func TestNonceUnknown(t *testing.T) {
	nc := NewNonceCache(time.Minute)
	assert.ErrorIs(t, nc.VerifyAndConsume("never-issued", 7), ErrNonceUnknown)
}

func TestNoncePlayerBinding(t *testing.T) {
	nc := NewNonceCache(time.Minute)

	nonce, err := nc.Create(7)
	require.NoError(t, err)

	// The wrong player neither consumes nor invalidates it
	assert.ErrorIs(t, nc.VerifyAndConsume(nonce, 8), ErrNonceMismatch)
	assert.NoError(t, nc.VerifyAndConsume(nonce, 7))
}

func TestNonceExpiry(t *testing.T) {
	nc := NewNonceCache(time.Nanosecond)

	nonce, err := nc.Create(7)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	assert.ErrorIs(t, nc.VerifyAndConsume(nonce, 7), ErrNonceExpired)
}

func TestNonceLengthClearsEntropyFloor(t *testing.T) {
	// 62 symbols per character; the value must carry at least 192 bits
	assert.GreaterOrEqual(t, float64(nonceLength)*math.Log2(62), 192.0)
}

func TestNonceValuesAreUnique(t *testing.T) {
	nc := NewNonceCache(time.Minute)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		nonce, err := nc.Create(i)
		require.NoError(t, err)
		assert.False(t, seen[nonce])
		seen[nonce] = true
	}
}

func TestNoncePurge(t *testing.T) {
	nc := NewNonceCache(time.Minute)

	nonce, err := nc.Create(7)
	require.NoError(t, err)

	nc.mu.Lock()
	nc.entries[nonce].createdAt = time.Now().Add(-10 * time.Minute)
	nc.mu.Unlock()

	assert.Equal(t, 1, nc.purge())
	assert.ErrorIs(t, nc.VerifyAndConsume(nonce, 7), ErrNonceUnknown)
}

package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/playtavola/backend/internal/game"
)

// disconnectTicket tracks a player's grace window after an unexpected drop.
type disconnectTicket struct {
	matchID int
	timer   *time.Timer
}

// Registry owns the live connection per player and the disconnect grace
// timers. At most one connection is mapped per player id; a newer
// authenticated connection always wins.
type Registry struct {
	mu      sync.RWMutex
	clients map[int]*Client
	tickets map[int]*disconnectTicket
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[int]*Client),
		tickets: make(map[int]*disconnectTicket),
	}
}

// Register maps an authenticated client. A prior connection for the same
// player is aborted first (last-writer-wins).
func (r *Registry) Register(playerID int, c *Client) {
	r.mu.Lock()
	old := r.clients[playerID]
	r.clients[playerID] = c
	r.mu.Unlock()

	if old != nil {
		log.Printf("[WS] Player %d reconnecting - closing old connection", playerID)
		old.abort("replaced by new connection")
	}
}

// Unregister removes the mapping, but only if c is still the current
// connection; a client replaced by Register must not evict its successor.
// It reports whether the removal happened.
func (r *Registry) Unregister(playerID int, c *Client) bool {
	r.mu.Lock()
	cur, ok := r.clients[playerID]
	if !ok || cur != c {
		r.mu.Unlock()
		return false
	}
	delete(r.clients, playerID)
	r.mu.Unlock()

	c.abort("")
	return true
}

// Send delivers one message best-effort; no mapping means it is dropped.
func (r *Registry) Send(playerID int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] Error marshaling message for player %d: %v", playerID, err)
		return
	}

	r.mu.RLock()
	c, ok := r.clients[playerID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	c.enqueue(data)
}

// Fanout delivers a batch of addressed messages. Per-player order follows the
// batch order; there is no cross-player guarantee.
func (r *Registry) Fanout(msgs []game.Outbound) {
	for _, m := range msgs {
		r.Send(m.PlayerID, m.Payload)
	}
}

// StartDisconnectTimer arms (or re-arms) the grace timer for a player. On
// expiry the ticket is removed first, then onExpiry runs, so a late cancel is
// harmless.
func (r *Registry) StartDisconnectTimer(playerID, matchID int, d time.Duration, onExpiry func(playerID, matchID int)) {
	r.mu.Lock()
	if old, ok := r.tickets[playerID]; ok {
		old.timer.Stop()
	}
	ticket := &disconnectTicket{matchID: matchID}
	ticket.timer = time.AfterFunc(d, func() {
		r.mu.Lock()
		cur, ok := r.tickets[playerID]
		if !ok || cur != ticket {
			r.mu.Unlock()
			return
		}
		delete(r.tickets, playerID)
		r.mu.Unlock()

		log.Printf("[WS] Disconnect grace expired for player %d (match %d)", playerID, matchID)
		onExpiry(playerID, matchID)
	})
	r.tickets[playerID] = ticket
	r.mu.Unlock()

	log.Printf("[WS] Disconnect timer armed for player %d (match %d, %s)", playerID, matchID, d)
}

// CancelDisconnectTimer stops a pending grace timer. Idempotent, and safe
// after expiry.
func (r *Registry) CancelDisconnectTimer(playerID int) {
	r.mu.Lock()
	if ticket, ok := r.tickets[playerID]; ok {
		ticket.timer.Stop()
		delete(r.tickets, playerID)
	}
	r.mu.Unlock()
}

// PendingResume returns the match a disconnected player may rejoin within the
// grace window, or 0.
func (r *Registry) PendingResume(playerID int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ticket, ok := r.tickets[playerID]; ok {
		return ticket.matchID
	}
	return 0
}

// ConnectedCount reports how many players currently hold a live connection.
func (r *Registry) ConnectedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

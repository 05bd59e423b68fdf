package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playtavola/backend/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 65536
)

// clientMessage is the inbound tagged union.
type clientMessage struct {
	Type     string          `json:"type"`
	Token    string          `json:"token,omitempty"`
	GameType models.GameType `json:"game_type,omitempty"`
	MoveData json.RawMessage `json:"move_data,omitempty"`
}

// Client represents one WebSocket connection. playerID is set only after a
// successful authenticate message. The outbound queue is unbounded; enqueue
// on a torn-down client is a silent drop, never an error or a panic.
type Client struct {
	conn     *websocket.Conn
	playerID int

	mu     sync.Mutex
	queue  [][]byte
	closed bool
	wake   chan struct{}
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		wake: make(chan struct{}, 1),
	}
}

// enqueue appends an already-marshaled frame to the outbound queue. Messages
// to a single player leave in enqueue order.
func (c *Client) enqueue(data []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, data)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// sendJSON marshals and enqueues a payload on this connection.
func (c *Client) sendJSON(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}
	c.enqueue(data)
}

func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{"type": "error", "message": message})
}

// abort marks the client torn down so late sends drop, wakes the writer and
// drops the transport. Idempotent.
func (c *Client) abort(reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	if reason != "" {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
			time.Now().Add(writeWait))
	}
	c.conn.Close()
}

// next pops the head of the queue; done reports a torn-down client whose
// queue has drained.
func (c *Client) next() (data []byte, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return nil, c.closed
	}
	data = c.queue[0]
	c.queue = c.queue[1:]
	return data, false
}

// writePump writes queued frames to the connection and keeps it alive with
// pings. Teardown causes a graceful close frame once the queue drains.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.wake:
			for {
				data, done := c.next()
				if done {
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if data == nil {
					break
				}
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
					log.Printf("[WS] Write error for player %d: %v", c.playerID, err)
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

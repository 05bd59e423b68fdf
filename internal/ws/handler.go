package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playtavola/backend/internal/auth"
	"github.com/playtavola/backend/internal/config"
	"github.com/playtavola/backend/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin policy is enforced by the CORS middleware in front
	},
}

// Handler upgrades connections on /ws and runs the message protocol:
// authenticate first, then join_matchmaking / resume_match / make_move / ping.
type Handler struct {
	cfg      *config.Config
	authSvc  *auth.Service
	mm       *game.Matchmaker
	registry *Registry
}

// NewHandler wires the realtime endpoint.
func NewHandler(cfg *config.Config, authSvc *auth.Service, mm *game.Matchmaker, registry *Registry) *Handler {
	return &Handler{cfg: cfg, authSvc: authSvc, mm: mm, registry: registry}
}

// Serve is the gin route handler for the websocket upgrade.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := newClient(conn)
	go client.writePump()
	h.readPump(client)
}

// readPump parses inbound frames and dispatches them. It owns the connection
// teardown: on exit the disconnect flow runs if the client was authenticated
// and still current.
func (h *Handler) readPump(c *Client) {
	authenticated := false
	defer func() {
		if authenticated && h.registry.Unregister(c.playerID, c) {
			h.handleDisconnect(c.playerID)
		} else {
			c.abort("")
		}
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error for player %d: %v", c.playerID, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed inbound frames are silently dropped
			continue
		}

		if !authenticated {
			if msg.Type != "authenticate" {
				c.sendError("authentication required")
				return
			}
			playerID, err := h.authSvc.AuthenticateToken(msg.Token)
			if err != nil {
				c.sendJSON(map[string]interface{}{"type": "auth_failed", "reason": err.Error()})
				return
			}
			c.playerID = playerID
			authenticated = true
			h.registry.Register(playerID, c)
			c.sendJSON(map[string]interface{}{"type": "auth_success", "player_id": playerID})
			log.Printf("[WS] Player %d authenticated", playerID)

			// Replay a pending resume so the client can pick its match back up
			if matchID := h.registry.PendingResume(playerID); matchID != 0 {
				if view, err := h.mm.MatchViewFor(playerID, matchID); err == nil {
					c.sendJSON(map[string]interface{}{"type": "resumable_match", "match_data": view})
				}
			}
			continue
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg clientMessage) {
	switch msg.Type {
	case "ping":
		c.sendJSON(map[string]interface{}{"type": "pong"})

	case "join_matchmaking":
		h.dispatch(c, h.mm.Join(c.playerID, msg.GameType))

	case "resume_match":
		matchID := h.registry.PendingResume(c.playerID)
		h.registry.CancelDisconnectTimer(c.playerID)
		if matchID == 0 {
			c.sendError("no match to resume")
			return
		}
		h.dispatch(c, h.mm.Resume(c.playerID, matchID))

	case "make_move":
		h.dispatch(c, h.mm.MakeMove(c.playerID, msg.MoveData))

	case "authenticate":
		// Already authenticated; a fresh token on the same connection is fine
		if playerID, err := h.authSvc.AuthenticateToken(msg.Token); err == nil && playerID == c.playerID {
			c.sendJSON(map[string]interface{}{"type": "auth_success", "player_id": playerID})
		} else {
			c.sendError("already authenticated")
		}

	default:
		c.sendError("unknown message type")
	}
}

// dispatch reports the matchmaker's verdict; delivery already happened through
// the registry sink. Internal failures stay opaque to the client and preserve
// the connection.
func (h *Handler) dispatch(c *Client, err error) {
	if err != nil {
		log.Printf("[WS] Internal error for player %d: %v", c.playerID, err)
		c.sendError("internal")
	}
}

// handleDisconnect runs the matchmaker disconnect flow and arms the grace
// timer when the player was mid-match.
func (h *Handler) handleDisconnect(playerID int) {
	log.Printf("[WS] Player %d disconnected", playerID)

	matchID, err := h.mm.Disconnect(playerID)
	if err != nil {
		log.Printf("[WS] Disconnect handling failed for player %d: %v", playerID, err)
		return
	}

	if matchID != 0 {
		grace := time.Duration(h.cfg.DisconnectGracePeriodSecs) * time.Second
		h.registry.StartDisconnectTimer(playerID, matchID, grace, func(pid, mid int) {
			if err := h.mm.DisconnectTimeout(pid, mid); err != nil {
				log.Printf("[WS] Disconnect timeout failed for player %d match %d: %v", pid, mid, err)
			}
		})
	}
}

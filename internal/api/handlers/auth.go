package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playtavola/backend/internal/auth"
	"github.com/playtavola/backend/internal/config"
)

// Challenge issues a one-shot login nonce after checking the key hint.
func Challenge(svc *auth.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayerID      int    `json:"player_id"`
			PublicKeyHint string `json:"public_key_hint"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player_id and public_key_hint required"})
			return
		}

		nonce, err := svc.RequestChallenge(req.PlayerID, req.PublicKeyHint)
		switch err {
		case nil:
		case auth.ErrPlayerNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		case auth.ErrHintMismatch:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		default:
			log.Printf("[AUTH] Challenge failed for player %d: %v", req.PlayerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"nonce":      nonce,
			"expires_in": cfg.NonceTTLSeconds,
		})
	}
}

// Verify consumes the nonce, checks the signature and mints a session.
func Verify(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayerID  int    `json:"player_id"`
			Nonce     string `json:"nonce"`
			Signature string `json:"signature"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player_id, nonce and signature required"})
			return
		}

		token, expires, player, err := svc.VerifyChallenge(req.PlayerID, req.Nonce, req.Signature)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "challenge verification failed"})
			return
		}

		log.Printf("[AUTH] Player %d logged in", player.ID)
		c.JSON(http.StatusOK, gin.H{
			"session_token": token,
			"expires_at":    expires.Format(time.RFC3339),
			"player":        player,
		})
	}
}

// Logout revokes the presented session token.
func Logout(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SessionToken string `json:"session_token"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_token required"})
			return
		}
		svc.Logout(req.SessionToken)
		c.JSON(http.StatusOK, gin.H{"logged_out": true})
	}
}

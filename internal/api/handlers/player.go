package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playtavola/backend/internal/auth"
	"github.com/playtavola/backend/internal/repository"
)

// CreatePlayer registers a new player with their RSA public key.
func CreatePlayer(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name          string `json:"name"`
			PublicKey     string `json:"public_key"`
			PublicKeyHint string `json:"public_key_hint"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, public_key and public_key_hint required"})
			return
		}

		name := strings.TrimSpace(req.Name)
		hint := strings.TrimSpace(req.PublicKeyHint)
		if name == "" || hint == "" || req.PublicKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, public_key and public_key_hint required"})
			return
		}
		if _, err := auth.ParsePublicKey(req.PublicKey); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "public_key must be PKCS#1 or SPKI PEM"})
			return
		}

		id, err := store.CreatePlayer(name, hint, req.PublicKey)
		if err != nil {
			log.Printf("[API] Failed to create player: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		player, err := store.GetPlayer(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		log.Printf("[API] Player %d (%s) registered", id, name)
		c.JSON(http.StatusOK, player)
	}
}

// GetMe returns the authenticated player's record.
func GetMe(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid := c.GetInt("player_id")
		player, err := store.GetPlayer(pid)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		c.JSON(http.StatusOK, player)
	}
}

// GetPlayer returns a player by id.
func GetPlayer(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
			return
		}
		player, err := store.GetPlayer(id)
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, player)
	}
}

// GetActiveMatches returns the authenticated player's in-progress match as a
// 0-or-1 element list.
func GetActiveMatches(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid := c.GetInt("player_id")
		matches, err := store.ActiveMatchesFor(pid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, matches)
	}
}

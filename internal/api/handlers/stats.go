package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playtavola/backend/internal/repository"
)

// GetStats returns the aggregate match record for ?player=<id>, defaulting to
// the authenticated player.
func GetStats(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid := c.GetInt("player_id")
		if q := c.Query("player"); q != "" {
			id, err := strconv.Atoi(q)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
				return
			}
			pid = id
		}

		stats, err := store.StatsFor(pid)
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// GetLeaderboard returns score-ranked players. limit is clamped to [1,100].
func GetLeaderboard(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		entries, total, err := store.Leaderboard(limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"entries":     entries,
			"total_count": total,
		})
	}
}

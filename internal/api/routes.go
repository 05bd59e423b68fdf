package api

import (
	"github.com/gin-gonic/gin"
	"github.com/playtavola/backend/internal/api/handlers"
	"github.com/playtavola/backend/internal/auth"
	"github.com/playtavola/backend/internal/config"
	"github.com/playtavola/backend/internal/middleware"
	"github.com/playtavola/backend/internal/repository"
	"github.com/playtavola/backend/internal/ws"
	"github.com/redis/go-redis/v9"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, store *repository.Store, svc *auth.Service, wsHandler *ws.Handler, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RateLimit(rdb, cfg))
	router.Use(middleware.CSRFSentinel())

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// Registration and the challenge/verify login round trip
	router.POST("/player", handlers.CreatePlayer(store))
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/challenge", handlers.Challenge(svc, cfg))
		authGroup.POST("/verify", handlers.Verify(svc))
		authGroup.POST("/logout", handlers.Logout(svc))
	}

	// Authenticated reads
	authed := router.Group("/", svc.Middleware())
	{
		authed.GET("/player", handlers.GetMe(store))
		authed.GET("/player/:id", handlers.GetPlayer(store))
		authed.GET("/matches/active", handlers.GetActiveMatches(store))
		authed.GET("/stats", handlers.GetStats(store))
		authed.GET("/leaderboard", handlers.GetLeaderboard(store))
	}

	// Realtime channel; authentication happens in-band
	router.GET("/ws", wsHandler.Serve)

	// Optional static assets for the bundled client
	if cfg.StaticDir != "" {
		router.Static("/app", cfg.StaticDir)
	}
}

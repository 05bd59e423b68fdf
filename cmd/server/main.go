package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playtavola/backend/internal/api"
	"github.com/playtavola/backend/internal/auth"
	"github.com/playtavola/backend/internal/config"
	"github.com/playtavola/backend/internal/database"
	"github.com/playtavola/backend/internal/game"
	"github.com/playtavola/backend/internal/migrations"
	rediscli "github.com/playtavola/backend/internal/redis"
	"github.com/playtavola/backend/internal/repository"
	"github.com/playtavola/backend/internal/ws"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabasePath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis (optional; only the rate limiter needs it)
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = rediscli.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	} else {
		log.Println("[RATE] Redis not configured - rate limiting disabled")
	}

	ctx := context.Background()

	// Repository and auth caches
	store := repository.New(db)
	nonces := auth.NewNonceCache(time.Duration(cfg.NonceTTLSeconds) * time.Second)
	nonces.StartSweeper(ctx, time.Minute)
	sessions := auth.NewSessionCache(time.Duration(cfg.SessionTTLHours) * time.Hour)
	sessions.StartSweeper(ctx, 10*time.Minute)
	authSvc := auth.NewService(store, nonces, sessions)

	// Matchmaking core and realtime endpoint; the registry is the delivery
	// sink the matchmaker fans out through
	dispatcher := game.NewDispatcher()
	registry := ws.NewRegistry()
	matchmaker := game.NewMatchmaker(store, dispatcher, registry)
	wsHandler := ws.NewHandler(cfg, authSvc, matchmaker, registry)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, store, authSvc, wsHandler, rdb, cfg)

	// Start server
	log.Printf("Starting PlayTavola server on %s", cfg.ListenAddr)
	if cfg.TLSEnabled() {
		// Plaintext listener only redirects to the TLS endpoint
		go func() {
			redirect := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				target := "https://" + r.Host + r.URL.RequestURI()
				http.Redirect(w, r, target, http.StatusMovedPermanently)
			})
			if err := http.ListenAndServe(cfg.RedirectAddr, redirect); err != nil {
				log.Printf("HTTP redirect listener stopped: %v", err)
			}
		}()
		if err := router.RunTLS(cfg.ListenAddr, cfg.TLSCertFile, cfg.TLSKeyFile); err != nil {
			log.Fatalf("Failed to start TLS server: %v", err)
		}
		return
	}
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Server
	ListenAddr   string
	RedirectAddr string
	FrontendURL  string
	StaticDir    string

	// TLS (both must be set to enable HTTPS + redirect)
	TLSCertFile string
	TLSKeyFile  string

	// Database
	DatabasePath string

	// Redis (optional; rate limiting is disabled without it)
	RedisURL string

	// Auth
	NonceTTLSeconds int
	SessionTTLHours int
	RateLimitBucket int
	RateLimitWindow int

	// Game settings
	DisconnectGracePeriodSecs int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Server
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		RedirectAddr: getEnv("HTTP_REDIRECT_ADDR", ":80"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
		StaticDir:    getEnv("STATIC_DIR", ""),

		// TLS
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		// Database
		DatabasePath: getEnv("DATABASE_PATH", "tavola.db"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Auth
		NonceTTLSeconds: getEnvInt("NONCE_TTL_SECONDS", 60),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24),
		RateLimitBucket: getEnvInt("RATE_LIMIT_BUCKET", 60),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),

		// Game settings
		DisconnectGracePeriodSecs: getEnvInt("DISCONNECT_GRACE_PERIOD_SECONDS", 30),
	}
}

// TLSEnabled reports whether both certificate and key paths are configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

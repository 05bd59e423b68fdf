package auth

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playtavola/backend/internal/models"
	"github.com/playtavola/backend/internal/repository"
)

// Errors
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrHintMismatch   = errors.New("public key hint does not match")
	ErrAuthRequired   = errors.New("missing or malformed bearer token")
)

// Service implements the challenge -> sign -> verify login round trip and
// bearer authentication for both HTTP and the realtime channel.
type Service struct {
	store    *repository.Store
	nonces   *NonceCache
	sessions *SessionCache
}

// NewService wires the auth service to its caches and the player store.
func NewService(store *repository.Store, nonces *NonceCache, sessions *SessionCache) *Service {
	return &Service{store: store, nonces: nonces, sessions: sessions}
}

// RequestChallenge mints a nonce for the player after checking the persisted
// key hint.
func (s *Service) RequestChallenge(playerID int, keyHint string) (string, error) {
	player, err := s.store.GetPlayer(playerID)
	if err == repository.ErrNotFound {
		return "", ErrPlayerNotFound
	}
	if err != nil {
		return "", err
	}
	if player.PublicKeyHint != keyHint {
		return "", ErrHintMismatch
	}
	return s.nonces.Create(playerID)
}

// VerifyChallenge consumes the nonce, verifies the signature against the
// player's public key and mints a session token. The nonce is burned before
// the signature check, so a failed attempt costs the challenge.
func (s *Service) VerifyChallenge(playerID int, nonce, signatureB64 string) (string, time.Time, *models.Player, error) {
	if err := s.nonces.VerifyAndConsume(nonce, playerID); err != nil {
		return "", time.Time{}, nil, err
	}

	player, err := s.store.GetPlayer(playerID)
	if err == repository.ErrNotFound {
		return "", time.Time{}, nil, ErrPlayerNotFound
	}
	if err != nil {
		return "", time.Time{}, nil, err
	}

	signature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return "", time.Time{}, nil, ErrBadSignature
	}
	key, err := ParsePublicKey(player.PublicKey)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if err := VerifySignature(key, nonce, signature); err != nil {
		log.Printf("[AUTH] Signature verification failed for player %d", playerID)
		return "", time.Time{}, nil, err
	}

	token, expires := s.sessions.Create(playerID)
	return token, expires, player, nil
}

// AuthenticateToken resolves a raw session token, as presented on the
// realtime channel's authenticate message.
func (s *Service) AuthenticateToken(token string) (int, error) {
	return s.sessions.Verify(token)
}

// Logout revokes a session token.
func (s *Service) Logout(token string) {
	s.sessions.Revoke(token)
}

// AuthenticateRequest extracts Authorization: Bearer <token> and resolves it.
func (s *Service) AuthenticateRequest(headers http.Header) (int, error) {
	authz := headers.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return 0, ErrAuthRequired
	}
	return s.sessions.Verify(strings.TrimPrefix(authz, "Bearer "))
}

// Middleware validates the bearer token and sets player_id in the gin context.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, err := s.AuthenticateRequest(c.Request.Header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}
		c.Set("player_id", playerID)
		c.Next()
	}
}

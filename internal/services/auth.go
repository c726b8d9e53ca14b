package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/pandeptwidyaop/pixi-server/internal/config"
)

// AuthService checks the access token presented by API callers.
type AuthService struct {
	cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// ValidateToken reports whether token grants access. A configured bcrypt
// hash takes precedence over a plain token.
func (s *AuthService) ValidateToken(token string) bool {
	if token == "" {
		return false
	}

	if s.cfg.Auth.TokenHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.cfg.Auth.TokenHash), []byte(token)) == nil
	}

	if s.cfg.Auth.Token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.cfg.Auth.Token), []byte(token)) == 1
}

// EnsureToken generates a random token when none is configured and reports
// whether it did so.
func (s *AuthService) EnsureToken() (bool, error) {
	if s.cfg.Auth.Token != "" || s.cfg.Auth.TokenHash != "" {
		return false, nil
	}

	token, err := GenerateToken()
	if err != nil {
		return false, err
	}
	s.cfg.Auth.Token = token
	log.Printf("[Auth] No access token configured, generated one for this run")
	return true, nil
}

// GenerateToken returns 48 random hex characters.
func GenerateToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashToken returns the bcrypt hash to put in auth.token_hash.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	return string(hash), err
}

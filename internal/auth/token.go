package auth

import (
	"context"
	"sync"
	"time"

	"github.com/voipops-io/pbxapi-client/internal/constants"
)

// TokenManager manages access tokens for API authentication.
type TokenManager interface {
	// GetToken returns a valid access token, obtaining or renewing one when
	// necessary.
	GetToken(ctx context.Context) (string, error)
	// RefreshToken forces a token renewal.
	RefreshToken(ctx context.Context) error
	// SetToken manually sets the access token.
	SetToken(token string, expiresAt time.Time)
}

// SessionManager extends TokenManager with interactive login and session
// inspection. Both SessionTokenManager and ConfigTokenManager satisfy it.
type SessionManager interface {
	TokenManager
	// Authenticate performs a credential login.
	Authenticate(ctx context.Context, username, password string) error
	// Current returns a copy of the stored token pair.
	Current() Token
}

// Token represents a PBX session token pair.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int64     `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// Valid reports whether the token can still be sent. Tokens inside the expiry
// buffer count as invalid so they get renewed before the PBX rejects them;
// tokens without a known expiry stay valid until the PBX says otherwise.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(t.ExpiresAt)
}

// TokenStore provides thread-safe token storage. A renewal replaces the whole
// pair in one Set, so readers never observe a half-updated session.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates a new token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token, or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister defines the interface for persisting session changes.
type ConfigPersister interface {
	UpdateSession(server, accessToken string, expiresAt time.Time, refreshToken string) error
}

// ConfigTokenManager wraps SessionTokenManager and automatically persists
// renewed sessions to config.
type ConfigTokenManager struct {
	sessionManager  *SessionTokenManager
	configPersister ConfigPersister
	server          string
	mutex           sync.Mutex
	persistedToken  string
	persistedExpiry time.Time
}

// NewConfigTokenManager creates a new config-persisting token manager. The
// server name keys the persisted session in the config file.
func NewConfigTokenManager(config *SessionConfig, configPersister ConfigPersister, server string) *ConfigTokenManager {
	sessionManager := NewSessionTokenManager(config)
	seeded := sessionManager.Current()

	return &ConfigTokenManager{
		sessionManager:  sessionManager,
		configPersister: configPersister,
		server:          server,
		persistedToken:  seeded.AccessToken,
		persistedExpiry: seeded.ExpiresAt,
	}
}

// Authenticate logs in with explicit credentials and persists the session.
func (m *ConfigTokenManager) Authenticate(ctx context.Context, username, password string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	err := m.sessionManager.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}

	m.persistCurrentLocked(false)

	return nil
}

// GetToken returns a valid access token, renewing if necessary.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	token, err := m.sessionManager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	// Persist in the background when the session was renewed under the hood.
	current := m.sessionManager.Current()
	if current.AccessToken != m.persistedToken || !current.ExpiresAt.Equal(m.persistedExpiry) {
		m.persistCurrentLocked(true)
	}

	return token, nil
}

// RefreshToken forces a session renewal and persists the result.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	err := m.sessionManager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistCurrentLocked(false)

	return nil
}

// SetToken manually sets the access token.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.sessionManager.SetToken(token, expiresAt)
	m.persistedToken = token
	m.persistedExpiry = expiresAt
}

// Current returns a copy of the stored token pair.
func (m *ConfigTokenManager) Current() Token {
	return m.sessionManager.Current()
}

// IsTokenExpiringSoon returns true if the token expires within the given duration.
func (m *ConfigTokenManager) IsTokenExpiringSoon(within time.Duration) bool {
	token := m.sessionManager.Current()
	if token.AccessToken == "" {
		return true
	}

	if token.ExpiresAt.IsZero() {
		return false
	}

	return time.Now().Add(within).After(token.ExpiresAt)
}

// GetTokenExpiry returns the current token's expiration time.
func (m *ConfigTokenManager) GetTokenExpiry() time.Time {
	return m.sessionManager.Current().ExpiresAt
}

// persistCurrentLocked saves the current session to config and updates the
// cached values used for change detection. Callers hold the mutex.
func (m *ConfigTokenManager) persistCurrentLocked(background bool) {
	current := m.sessionManager.Current()
	m.persistedToken = current.AccessToken
	m.persistedExpiry = current.ExpiresAt

	persist := func() {
		persistErr := m.persistToken(&current)
		if persistErr != nil {
			// Log error but don't fail the request
			_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed session: %v\n", persistErr)
		}
	}

	if background {
		go persist()
	} else {
		persist()
	}
}

// persistToken saves the token to config.
func (m *ConfigTokenManager) persistToken(token *Token) error {
	if m.configPersister == nil {
		return ErrNoConfigPersister
	}

	err := m.configPersister.UpdateSession(m.server, token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

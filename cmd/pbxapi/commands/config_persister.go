package commands

import (
	"fmt"
	"sync"
	"time"

	"github.com/voipops-io/pbxapi-client/internal/constants"
)

// ConfigPersister implements the auth.ConfigPersister interface.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateSession updates the session tokens and related metadata for a server
// in the config file.
func (p *ConfigPersister) UpdateSession(server, accessToken string, expiresAt time.Time, refreshToken string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	// Load current config
	config := loadConfig()

	serverConfig, exists := config.Servers[server]
	if !exists {
		return fmt.Errorf("server configuration for '%s': %w", server, constants.ErrServerNotFound)
	}

	// Update token information
	serverConfig.AccessToken = accessToken
	if !expiresAt.IsZero() {
		serverConfig.TokenExpiresAt = &expiresAt
	}

	if refreshToken != "" {
		serverConfig.RefreshToken = refreshToken
	}

	now := time.Now()
	serverConfig.LastRefreshed = &now

	// Save the updated config
	return saveConfigStruct(config)
}

// Package pbxclient provides the main entry point for creating PBX API clients
package pbxclient

import (
	"fmt"

	"github.com/voipops-io/pbxapi-client/internal/client"
	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
)

// New creates a new PBX API client.
func New(config *pbxapi.Config) (pbxapi.Client, error) {
	if config == nil {
		return nil, pbxapi.ErrConfigRequired
	}

	pbxClient, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return pbxClient, nil
}

// NewWithEndpoint creates a new client with just a PBX endpoint (no auth).
// Requests fail until Authenticate is called.
func NewWithEndpoint(endpoint string) (pbxapi.Client, error) {
	return New(&pbxapi.Config{
		BaseURL: endpoint,
	})
}

// NewWithToken creates a new client with a PBX endpoint and access token.
func NewWithToken(endpoint, accessToken string) (pbxapi.Client, error) {
	return New(&pbxapi.Config{
		BaseURL:     endpoint,
		AccessToken: accessToken,
	})
}

// NewWithTokens creates a new client from a saved session token pair. The
// refresh token lets the client renew the session when the access token
// expires.
func NewWithTokens(endpoint, accessToken, refreshToken string) (pbxapi.Client, error) {
	return New(&pbxapi.Config{
		BaseURL:      endpoint,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// NewWithPassword creates a new client using username/password
// authentication. The login happens lazily on the first request.
func NewWithPassword(endpoint, username, password string) (pbxapi.Client, error) {
	return New(&pbxapi.Config{
		BaseURL:  endpoint,
		Username: username,
		Password: password,
	})
}

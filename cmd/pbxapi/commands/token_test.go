package commands

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTokenStatusData(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		serverConfig := &ServerConfig{Endpoint: "https://pbx.example.com"}

		tokenStatus := buildTokenStatusData(serverConfig, "production")
		assert.Equal(t, "production", tokenStatus["server"])
		assert.Equal(t, "https://pbx.example.com", tokenStatus["endpoint"])
		assert.Equal(t, "No token", tokenStatus["status"])
		assert.Equal(t, false, tokenStatus["authenticated"])
	})

	t.Run("valid token", func(t *testing.T) {
		expiresAt := time.Now().Add(time.Hour)
		serverConfig := &ServerConfig{
			Endpoint:       "https://pbx.example.com",
			AccessToken:    "some-token",
			RefreshToken:   "some-refresh-token",
			TokenExpiresAt: &expiresAt,
		}

		tokenStatus := buildTokenStatusData(serverConfig, "production")
		assert.Equal(t, "Token present", tokenStatus["status"])
		assert.Equal(t, true, tokenStatus["authenticated"])
		assert.Equal(t, "Valid", tokenStatus["expiry_status"])
		assert.Equal(t, expiresAt.Format(time.RFC3339), tokenStatus["expires_at"])
		assert.Equal(t, true, tokenStatus["refresh_token_available"])
	})

	t.Run("expired token", func(t *testing.T) {
		expiresAt := time.Now().Add(-time.Hour)
		serverConfig := &ServerConfig{
			Endpoint:       "https://pbx.example.com",
			AccessToken:    "some-token",
			TokenExpiresAt: &expiresAt,
		}

		tokenStatus := buildTokenStatusData(serverConfig, "production")
		assert.Equal(t, "Expired", tokenStatus["expiry_status"])
		assert.Equal(t, false, tokenStatus["refresh_token_available"])
	})

	t.Run("token expiring soon", func(t *testing.T) {
		expiresAt := time.Now().Add(2 * time.Minute)
		serverConfig := &ServerConfig{
			Endpoint:       "https://pbx.example.com",
			AccessToken:    "some-token",
			TokenExpiresAt: &expiresAt,
		}

		tokenStatus := buildTokenStatusData(serverConfig, "production")
		assert.Equal(t, "Expires soon", tokenStatus["expiry_status"])
	})

	t.Run("opaque token without stored expiry", func(t *testing.T) {
		serverConfig := &ServerConfig{
			Endpoint:    "https://pbx.example.com",
			AccessToken: "not-a-jwt",
		}

		tokenStatus := buildTokenStatusData(serverConfig, "production")
		assert.Equal(t, "Unknown expiration", tokenStatus["expiry_status"])
	})
}

func TestGetTokenExpiration(t *testing.T) {
	t.Run("prefers the stored expiry", func(t *testing.T) {
		expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
		serverConfig := &ServerConfig{
			AccessToken:    "not-a-jwt",
			TokenExpiresAt: &expiresAt,
		}

		result := getTokenExpiration(serverConfig)
		require.NotNil(t, result)
		assert.True(t, expiresAt.Equal(*result))
	})

	t.Run("falls back to the JWT exp claim", func(t *testing.T) {
		expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": expiresAt.Unix(),
		})

		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		serverConfig := &ServerConfig{AccessToken: signed}

		result := getTokenExpiration(serverConfig)
		require.NotNil(t, result)
		assert.True(t, expiresAt.Equal(*result))
	})

	t.Run("nil for opaque tokens", func(t *testing.T) {
		serverConfig := &ServerConfig{AccessToken: "not-a-jwt"}
		assert.Nil(t, getTokenExpiration(serverConfig))
	})
}

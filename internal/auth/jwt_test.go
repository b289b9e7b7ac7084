package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voipops-io/pbxapi-client/internal/constants"
)

func TestTokenExpiry(t *testing.T) {
	t.Run("token with expiration claim", func(t *testing.T) {
		expiresAt := time.Now().Add(30 * time.Minute).Truncate(time.Second)
		raw := signedTestToken(t, expiresAt)

		expiry, err := TokenExpiry(raw)
		require.NoError(t, err)
		assert.Equal(t, expiresAt.Unix(), expiry.Unix())
	})

	t.Run("token without expiration claim", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject: "admin",
		}).SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		_, err = TokenExpiry(raw)
		require.Error(t, err)
		assert.ErrorIs(t, err, constants.ErrNoExpirationClaim)
	})

	t.Run("opaque token", func(t *testing.T) {
		_, err := TokenExpiry("not-a-jwt")
		require.Error(t, err)
		assert.ErrorIs(t, err, constants.ErrInvalidJWTFormat)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := TokenExpiry("")
		require.Error(t, err)
		assert.ErrorIs(t, err, constants.ErrInvalidJWTFormat)
	})
}

func TestExpiryFor(t *testing.T) {
	t.Run("expires_in takes precedence over JWT claim", func(t *testing.T) {
		raw := signedTestToken(t, time.Now().Add(24*time.Hour))

		expiry := expiryFor(raw, 60)
		assert.WithinDuration(t, time.Now().Add(60*time.Second), expiry, 5*time.Second)
	})

	t.Run("falls back to JWT expiration claim", func(t *testing.T) {
		expiresAt := time.Now().Add(2 * time.Hour).Truncate(time.Second)
		raw := signedTestToken(t, expiresAt)

		expiry := expiryFor(raw, 0)
		assert.Equal(t, expiresAt.Unix(), expiry.Unix())
	})

	t.Run("opaque token without expires_in", func(t *testing.T) {
		expiry := expiryFor("opaque-token", 0)
		assert.True(t, expiry.IsZero())
	})

	t.Run("empty token", func(t *testing.T) {
		expiry := expiryFor("", 0)
		assert.True(t, expiry.IsZero())
	})
}

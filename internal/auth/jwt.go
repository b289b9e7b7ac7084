package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/voipops-io/pbxapi-client/internal/constants"
)

// TokenExpiry extracts the expiration time from a JWT access token. The PBX
// does not publish its signing key, so the claims are read without signature
// verification. The value is only used to schedule renewals.
func TokenExpiry(raw string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}

	parser := jwt.NewParser()

	_, _, err := parser.ParseUnverified(raw, claims)
	if err != nil {
		return time.Time{}, constants.ErrInvalidJWTFormat
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return claims.ExpiresAt.Time, nil
}

// expiryFor picks the best available expiry for a freshly issued token:
// an explicit expires_in from the server wins, then the JWT exp claim, then
// no expiry at all (the token stays valid until the PBX rejects it).
func expiryFor(accessToken string, expiresIn int64) time.Time {
	if expiresIn > 0 {
		return time.Now().Add(time.Duration(expiresIn) * time.Second)
	}

	expiry, err := TokenExpiry(accessToken)
	if err != nil {
		return time.Time{}
	}

	return expiry
}

package pbxapi

import (
	"time"
)

// SessionState is a point-in-time snapshot of the client session. It exists
// so callers (the CLI persists tokens between invocations, for example) can
// read the tokens without reaching into the session manager.
type SessionState struct {
	AccessToken  string    `json:"access_token,omitempty"  yaml:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"    yaml:"expires_at,omitempty"`
}

// Authenticated reports whether the snapshot holds an access token.
func (s SessionState) Authenticated() bool {
	return s.AccessToken != ""
}

// Expired reports whether the snapshot's token lifetime has passed. Sessions
// without a known expiry never report expired here; the PBX's own rejection
// is the fallback signal for those.
func (s SessionState) Expired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}

	return time.Now().After(s.ExpiresAt)
}

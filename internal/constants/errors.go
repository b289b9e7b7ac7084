package constants

import "errors"

// Configuration errors.
var (
	ErrNoServersConfigured = errors.New("no PBX servers configured, use 'pbxapi servers add' to add one")
	ErrServerNotFound      = errors.New("server not found")
	ErrCurrentServerGone   = errors.New("current server missing from configuration")
	ErrNoRefreshToken      = errors.New("no refresh token available, please run 'pbxapi login' again")
	ErrNotAuthenticated    = errors.New("not authenticated. Use 'pbxapi login' to authenticate first")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrTokenFieldUnset     = errors.New("token fields cannot be unset via config command, use 'pbxapi logout'")
	ErrLastServer          = errors.New("cannot delete the only configured server")
	ErrEndpointHostMissing = errors.New("no host specified in endpoint")
)

// Token errors.
var (
	ErrInvalidJWTFormat  = errors.New("invalid JWT format")
	ErrNoExpirationClaim = errors.New("no expiration claim found")
)

// Command argument errors.
var (
	ErrResourceRequired  = errors.New("resource name is required")
	ErrIDRequired        = errors.New("record id is required")
	ErrDataRequired      = errors.New("record data is required, use --data or --file")
	ErrDataConflict      = errors.New("--data and --file are mutually exclusive")
	ErrInvalidDataJSON   = errors.New("record data is not a JSON object")
	ErrInvalidDataPair   = errors.New("invalid data format, expected key=value")
	ErrUnknownFormat     = errors.New("unknown output format")
	ErrPasswordRequired  = errors.New("password is required")
	ErrUsernameRequired  = errors.New("username is required")
	ErrTermRequired      = errors.New("search term is required")
	ErrOperationRequired = errors.New("operation name is required")
)

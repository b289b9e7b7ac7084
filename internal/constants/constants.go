package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// AuthHTTPTimeout bounds login and token renewal requests.
	AuthHTTPTimeout = 15 * time.Second
)

// Retry limits. The client performs no transport retries unless explicitly
// configured; the only built-in retry is the single auth-triggered one.
const (
	// DefaultRetryMax keeps transport retries off.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between opt-in retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between opt-in retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// PBX API endpoint shapes for stock Issabel installations. All of them are
// overridable through the client configuration.
const (
	// DefaultAPIRoot is the path prefix the PBX serves the API under.
	DefaultAPIRoot = "/pbxapi"

	// DefaultLoginPath is the login endpoint, relative to the API root.
	DefaultLoginPath = "authenticate"

	// DefaultRenewPath is the token renewal endpoint.
	DefaultRenewPath = "authenticate/renewtoken"

	// DefaultReloadPath is the configuration reload endpoint. A "{resource}"
	// placeholder, when present, is substituted with the mutated resource.
	DefaultReloadPath = "reload"

	// ReloadResourcePlaceholder is the substitution marker in reload paths.
	ReloadResourcePlaceholder = "{resource}"

	// DefaultReloadMethod is the HTTP method for reload requests.
	DefaultReloadMethod = "POST"

	// SearchPathSegment joins resource and term in search URLs.
	SearchPathSegment = "search"
)

// Wire field names of the PBX auth protocol.
const (
	// LoginUserField is the form field carrying the username.
	LoginUserField = "user"

	// LoginPasswordField is the form field carrying the password.
	LoginPasswordField = "password"

	// AccessTokenField names the access token in auth responses and renewal
	// query strings.
	AccessTokenField = "access_token"

	// RefreshTokenField names the refresh token in auth responses and
	// renewal query strings.
	RefreshTokenField = "refresh_token"

	// ExpiresInField names the optional token lifetime in auth responses.
	ExpiresInField = "expires_in"

	// StatusField names the status discriminator in renewal and legacy
	// expiry responses.
	StatusField = "status"

	// StatusAuthorized is the renewal success marker.
	StatusAuthorized = "authorized"

	// StatusExpired marks the legacy in-band token expiry signal carried in
	// 200 responses.
	StatusExpired = "expired"

	// FieldsParam is the query parameter restricting returned attributes.
	FieldsParam = "fields"
)

// Token lifecycle constants.
const (
	// TokenExpirationBuffer is the buffer time before token expiration; a
	// token within the buffer is renewed rather than sent.
	TokenExpirationBuffer = 30 * time.Second
)

// Response normalization limits.
const (
	// DefaultBodyExcerptLimit bounds the diagnostic excerpt kept from
	// non-JSON response bodies.
	DefaultBodyExcerptLimit = 200
)

// HTTP header names and values.
const (
	// HeaderAuthorization carries the Bearer token.
	HeaderAuthorization = "Authorization"

	// HeaderContentType declares request body encoding.
	HeaderContentType = "Content-Type"

	// HeaderUserAgent identifies the client.
	HeaderUserAgent = "User-Agent"

	// HeaderRequestID correlates request and response log lines.
	HeaderRequestID = "X-Request-Id"

	// ContentTypeJSON is the JSON media type.
	ContentTypeJSON = "application/json"

	// ContentTypeForm is the form encoding used by the login endpoint.
	ContentTypeForm = "application/x-www-form-urlencoded"

	// BearerPrefix prefixes the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// DefaultUserAgent identifies this SDK.
	DefaultUserAgent = "pbxapi-client/1.0"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// TokenPreviewLength is how many token characters stay visible when the
	// rest is masked.
	TokenPreviewLength = 8
)

// Output format constants.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// Formatting constants.
const (
	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// ValueDisplayLength is the default length for truncating cell values.
	ValueDisplayLength = 60
)

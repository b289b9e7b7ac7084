package pbxapi

import (
	"context"
	"errors"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrDeprecatedClientConstructor = errors.New("use github.com/voipops-io/pbxapi-client/pkg/pbxclient.New to create a client")
)

// SessionOperations provides access to login and token lifecycle operations.
type SessionOperations interface {
	// Authenticate logs in with the given credentials and stores the
	// resulting access/refresh token pair on the client session.
	Authenticate(ctx context.Context, username, password string) error
	// RenewToken forces a token renewal using the stored refresh token.
	// Renewal normally happens lazily; explicit calls are rarely needed.
	RenewToken(ctx context.Context) error
	// Session returns a snapshot of the current session tokens.
	Session() SessionState
}

// ResourceOperations provides the uniform CRUD surface shared by every PBX
// resource. The resource argument is forwarded as-is; the server decides
// whether it exists.
type ResourceOperations interface {
	// Get fetches a single record by id. Params may restrict the returned
	// fields.
	Get(ctx context.Context, resource, id string, params *QueryParams) (*Document, error)
	// List fetches all records of a resource.
	List(ctx context.Context, resource string, params *QueryParams) (*Document, error)
	// Create adds a new record. A follow-up reload request is issued after
	// success unless opts disables it.
	Create(ctx context.Context, resource string, data map[string]interface{}, opts *MutateOptions) (*Document, error)
	// Update replaces an existing record, with the same reload semantics as
	// Create.
	Update(ctx context.Context, resource, id string, data map[string]interface{}, opts *MutateOptions) (*Document, error)
	// Delete removes one or more records; multiple ids are joined with commas
	// into a single path segment as the PBX expects.
	Delete(ctx context.Context, resource string, ids []string, opts *MutateOptions) (*Document, error)
	// Search issues a term search against a resource's listing endpoint.
	Search(ctx context.Context, resource, term string, params *QueryParams) (*Document, error)
	// Reload asks the PBX to apply pending configuration changes to the
	// running telephony engine.
	Reload(ctx context.Context, resource string) (*Document, error)
}

// DynamicOperations provides the convention-based operation path: operation
// names such as "get_extensions" are mapped onto (verb, resource) pairs at
// call time.
type DynamicOperations interface {
	// Do executes a resolved operation with the conventional arguments for
	// its verb carried in call.
	Do(ctx context.Context, op Operation, call Call) (*Document, error)
	// Resolve parses a conventional operation name and returns a callable
	// bound to the parsed (verb, resource) pair. Names outside the
	// convention fail with UnknownOperationError.
	Resolve(name string) (BoundOperation, error)
}

// Client is the full PBX API client surface.
type Client interface {
	SessionOperations
	ResourceOperations
	DynamicOperations
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a pbxapi.Client.
//
// # Authentication precedence
//
// The following precedence is applied by the concrete client implementation
// (see pkg/pbxclient and internal/client):
//  1. AccessToken: if set, it is used directly as the Bearer token. When a
//     RefreshToken is also provided, the client renews through it once the
//     access token expires or is rejected.
//  2. Username/Password: the client logs in on the first request that needs a
//     token, and falls back to a fresh login when a renewal is rejected.
//  3. No credentials: requests fail with ErrNotAuthenticated until
//     Authenticate is called explicitly.
//
// # Endpoints
//
// The login, renew, and reload endpoint shapes vary between PBX builds, so
// they are configuration-driven. The zero values match stock Issabel:
// "authenticate", "authenticate/renewtoken", and "reload". ReloadPath may
// contain a "{resource}" placeholder which is substituted with the resource
// name of the preceding mutation.
//
// # Timeouts, retries, and TLS
//
// Per-request timeouts should generally be controlled via the context passed
// to client methods; HTTPTimeout bounds the transport as a whole. Transport
// retries are disabled by default (the only built-in retry is the single
// auth-triggered one) and can be enabled via RetryMax/RetryWaitMin/
// RetryWaitMax for callers that want them. PBX appliances commonly ship
// self-signed certificates; SkipTLSVerify disables certificate validation
// independently of the chosen scheme.
type Config struct {
	// Required fields
	// BaseURL: host, IP, or full URL of the PBX (e.g., "pbx.example.com",
	// "https://10.0.0.5"). A bare host is combined with UseSSL and the
	// "/pbxapi" root is appended when no path is present.
	BaseURL string

	// UseSSL selects https (nil or true) or http (false) when BaseURL
	// carries no explicit scheme. An explicit scheme in BaseURL wins.
	UseSSL *bool
	// SkipTLSVerify disables TLS certificate validation, independent of the
	// scheme selection.
	SkipTLSVerify bool

	// Authentication options
	// Username: PBX API account for the login flow.
	Username string
	// Password: PBX API password used with Username.
	Password string
	// AccessToken: pre-seeded Bearer token, used directly when set.
	AccessToken string
	// RefreshToken: pre-seeded refresh token for renewals.
	RefreshToken string

	// Endpoint shapes (zero values match stock Issabel)
	// LoginPath: path of the login endpoint, relative to the API root.
	LoginPath string
	// RenewPath: path of the token renewal endpoint.
	RenewPath string
	// ReloadPath: path of the configuration reload endpoint; a "{resource}"
	// placeholder is substituted with the mutated resource name.
	ReloadPath string
	// ReloadMethod: HTTP method for the reload request (default POST).
	ReloadMethod string

	// Optional configurations
	// BodyExcerptLimit bounds the diagnostic excerpt kept from non-JSON
	// response bodies (default 200 characters).
	BodyExcerptLimit int
	// HTTPTimeout: transport-level timeout for a single request (default 30s).
	HTTPTimeout time.Duration
	// RetryMax: maximum transport retries for transient failures. Zero keeps
	// retries off, matching the client's no-retry contract.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
}

// NewClient creates a new PBX API client
// Deprecated: Use github.com/voipops-io/pbxapi-client/pkg/pbxclient.New instead.
func NewClient(config *Config) (Client, error) {
	return nil, ErrDeprecatedClientConstructor
}

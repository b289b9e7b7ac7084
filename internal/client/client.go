// Package client implements the pbxapi.Client interface against the REST
// API exposed by Issabel PBX systems.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/voipops-io/pbxapi-client/internal/auth"
	"github.com/voipops-io/pbxapi-client/internal/constants"
	"github.com/voipops-io/pbxapi-client/internal/http"
	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
)

// Static errors for err113 compliance.
var (
	ErrNoSessionManager = errors.New("token manager does not support interactive login")
)

// Client implements the pbxapi.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       pbxapi.Logger
	excerptLimit int
	reloadPath   string
	reloadMethod string
}

// New creates a new PBX API client.
func New(config *pbxapi.Config) (*Client, error) {
	if config == nil {
		return nil, pbxapi.ErrConfigRequired
	}

	baseURL, err := NormalizeBaseURL(config.BaseURL, config.UseSSL)
	if err != nil {
		return nil, err
	}

	tokenManager := auth.NewSessionTokenManager(sessionConfig(config, baseURL))

	return newWithManager(config, baseURL, tokenManager), nil
}

// NewWithTokenManager creates a new PBX API client with a custom token
// manager. The CLI uses this to plug in config-file persistence.
func NewWithTokenManager(config *pbxapi.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, pbxapi.ErrConfigRequired
	}

	baseURL, err := NormalizeBaseURL(config.BaseURL, config.UseSSL)
	if err != nil {
		return nil, err
	}

	return newWithManager(config, baseURL, tokenManager), nil
}

func newWithManager(config *pbxapi.Config, baseURL string, tokenManager auth.TokenManager) *Client {
	httpClient := http.NewClient(baseURL, tokenManager, httpOptions(config)...)

	excerptLimit := config.BodyExcerptLimit
	if excerptLimit <= 0 {
		excerptLimit = constants.DefaultBodyExcerptLimit
	}

	reloadPath := config.ReloadPath
	if reloadPath == "" {
		reloadPath = constants.DefaultReloadPath
	}

	reloadMethod := strings.ToUpper(config.ReloadMethod)
	if reloadMethod == "" {
		reloadMethod = constants.DefaultReloadMethod
	}

	return &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      baseURL,
		logger:       config.Logger,
		excerptLimit: excerptLimit,
		reloadPath:   reloadPath,
		reloadMethod: reloadMethod,
	}
}

// sessionConfig maps the public config onto the session manager's view.
func sessionConfig(config *pbxapi.Config, baseURL string) *auth.SessionConfig {
	return &auth.SessionConfig{
		BaseURL:       baseURL,
		LoginPath:     config.LoginPath,
		RenewPath:     config.RenewPath,
		Username:      config.Username,
		Password:      config.Password,
		AccessToken:   config.AccessToken,
		RefreshToken:  config.RefreshToken,
		SkipTLSVerify: config.SkipTLSVerify,
		HTTPTimeout:   config.HTTPTimeout,
		UserAgent:     config.UserAgent,
	}
}

// httpOptions builds HTTP client options from config.
func httpOptions(config *pbxapi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.SkipTLSVerify {
		httpOpts = append(httpOpts, http.WithTLSSkipVerify(true))
	}

	if config.BodyExcerptLimit > 0 {
		httpOpts = append(httpOpts, http.WithExcerptLimit(config.BodyExcerptLimit))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// NormalizeBaseURL resolves the configured base URL into the canonical API
// root. A bare host gets a scheme chosen from useSSL (HTTPS unless disabled)
// and the /pbxapi root is appended when missing. An explicit scheme in the
// URL wins over useSSL.
func NormalizeBaseURL(rawURL string, useSSL *bool) (string, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(rawURL), "/")
	if trimmed == "" {
		return "", pbxapi.ErrBaseURLRequired
	}

	if !strings.Contains(trimmed, "://") {
		scheme := "https"
		if useSSL != nil && !*useSSL {
			scheme = "http"
		}

		trimmed = scheme + "://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", rawURL, err)
	}

	if !strings.HasSuffix(parsed.Path, constants.DefaultAPIRoot) {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/") + constants.DefaultAPIRoot
	}

	return parsed.String(), nil
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// Authenticate implements pbxapi.SessionOperations.Authenticate.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	manager, ok := c.tokenManager.(auth.SessionManager)
	if !ok {
		return ErrNoSessionManager
	}

	err := manager.Authenticate(ctx, username, password)
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}

	return nil
}

// RenewToken implements pbxapi.SessionOperations.RenewToken.
func (c *Client) RenewToken(ctx context.Context) error {
	err := c.tokenManager.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("renewing token: %w", err)
	}

	return nil
}

// Session implements pbxapi.SessionOperations.Session.
func (c *Client) Session() pbxapi.SessionState {
	manager, ok := c.tokenManager.(auth.SessionManager)
	if !ok {
		return pbxapi.SessionState{}
	}

	token := manager.Current()

	return pbxapi.SessionState{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt,
	}
}

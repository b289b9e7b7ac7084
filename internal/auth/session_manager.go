package auth

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/voipops-io/pbxapi-client/internal/constants"
	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
)

// SessionConfig configures a SessionTokenManager.
type SessionConfig struct {
	// BaseURL is the normalized API root, e.g. "https://pbx.example.com/pbxapi".
	BaseURL string
	// LoginPath and RenewPath are relative to BaseURL; empty values use the
	// stock Issabel endpoints.
	LoginPath string
	RenewPath string
	// Username and Password enable automatic login and the re-login fallback
	// after a rejected renewal.
	Username string
	Password string
	// AccessToken and RefreshToken seed the session with pre-obtained tokens.
	AccessToken  string
	RefreshToken string
	// SkipTLSVerify disables certificate validation.
	SkipTLSVerify bool
	// HTTPTimeout bounds login and renewal requests.
	HTTPTimeout time.Duration
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// authResponse is the wire shape shared by the login and renewal endpoints.
type authResponse struct {
	Status       string `json:"status"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SessionTokenManager implements TokenManager against the PBX session
// protocol: form-encoded login, query-string token renewal, Bearer tokens.
// All operations serialize on one mutex so concurrent requests sharing the
// manager trigger at most one renewal per expiry.
type SessionTokenManager struct {
	config     *SessionConfig
	store      *TokenStore
	httpClient *http.Client
	mutex      sync.Mutex
}

// NewSessionTokenManager creates a session manager for the given config.
func NewSessionTokenManager(config *SessionConfig) *SessionTokenManager {
	if config.LoginPath == "" {
		config.LoginPath = constants.DefaultLoginPath
	}

	if config.RenewPath == "" {
		config.RenewPath = constants.DefaultRenewPath
	}

	timeout := config.HTTPTimeout
	if timeout == 0 {
		timeout = constants.AuthHTTPTimeout
	}

	transport := &http.Transport{}
	if config.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // PBX appliances commonly ship self-signed certificates
	}

	manager := &SessionTokenManager{
		config: config,
		store:  NewTokenStore(),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}

	if config.AccessToken != "" || config.RefreshToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			ExpiresAt:    expiryFor(config.AccessToken, 0),
		})
	}

	return manager
}

// Authenticate logs in with the given credentials and replaces the stored
// session on success.
func (m *SessionTokenManager) Authenticate(ctx context.Context, username, password string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.loginLocked(ctx, username, password)
}

// GetToken returns a valid access token. An expired token is renewed first;
// a client that has never authenticated is logged in when credentials are
// configured and fails with ErrNotAuthenticated otherwise.
func (m *SessionTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	err := m.renewLocked(ctx)
	if err != nil {
		return "", err
	}

	return m.store.Get().AccessToken, nil
}

// RefreshToken forces a renewal, falling back to a fresh login when the
// refresh token is rejected and credentials are configured.
func (m *SessionTokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.renewLocked(ctx)
}

// SetToken manually sets the access token, keeping any stored refresh token.
func (m *SessionTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	refreshToken := ""
	if current := m.store.Get(); current != nil {
		refreshToken = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	})
}

// Current returns a copy of the stored token pair.
func (m *SessionTokenManager) Current() Token {
	token := m.store.Get()
	if token == nil {
		return Token{}
	}

	return *token
}

// renewLocked renews the session through the renewal endpoint, falling back
// to a fresh login when that fails and credentials are configured. Callers
// hold the mutex.
func (m *SessionTokenManager) renewLocked(ctx context.Context) error {
	token := m.store.Get()
	if token == nil || token.AccessToken == "" || token.RefreshToken == "" {
		cause := error(pbxapi.ErrNotAuthenticated)
		if token != nil && (token.AccessToken != "" || token.RefreshToken != "") {
			cause = &pbxapi.SessionExpiredError{Detail: "no usable refresh token available"}
		}

		return m.loginFallbackLocked(ctx, cause)
	}

	err := m.renewRequestLocked(ctx, token.AccessToken, token.RefreshToken)
	if err == nil {
		return nil
	}

	if pbxapi.IsSessionExpired(err) {
		return m.loginFallbackLocked(ctx, err)
	}

	return err
}

// loginFallbackLocked performs a fresh login when credentials are configured,
// otherwise surfaces cause unchanged.
func (m *SessionTokenManager) loginFallbackLocked(ctx context.Context, cause error) error {
	if m.config.Username == "" || m.config.Password == "" {
		return cause
	}

	return m.loginLocked(ctx, m.config.Username, m.config.Password)
}

// loginLocked posts credentials to the login endpoint and stores the issued
// token pair. Callers hold the mutex.
func (m *SessionTokenManager) loginLocked(ctx context.Context, username, password string) error {
	loginURL := joinURL(m.config.BaseURL, m.config.LoginPath)

	form := url.Values{}
	form.Set(constants.LoginUserField, username)
	form.Set(constants.LoginPasswordField, password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building login request: %w", err)
	}

	req.Header.Set(constants.HeaderContentType, constants.ContentTypeForm)
	m.setCommonHeaders(req)

	statusCode, body, err := m.roundTrip(req)
	if err != nil {
		return &pbxapi.TransportError{Op: http.MethodPost, URL: loginURL, Err: err}
	}

	if statusCode < 200 || statusCode >= 300 {
		return &pbxapi.AuthError{StatusCode: statusCode, Detail: excerptOrDefault(body, "credentials rejected")}
	}

	var result authResponse

	err = json.Unmarshal(body, &result)
	if err != nil {
		return &pbxapi.AuthError{
			StatusCode: statusCode,
			Detail:     "server returned non-JSON response: " + excerptOrDefault(body, "empty body"),
		}
	}

	if result.AccessToken == "" {
		return &pbxapi.AuthError{StatusCode: statusCode, Detail: "response missing access_token"}
	}

	m.store.Set(&Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		ExpiresAt:    expiryFor(result.AccessToken, result.ExpiresIn),
	})

	return nil
}

// renewRequestLocked performs the wire renewal. The PBX wants both current
// tokens as query parameters and answers with status "authorized" plus a
// fresh pair; anything else means the refresh token is no longer good.
func (m *SessionTokenManager) renewRequestLocked(ctx context.Context, accessToken, refreshToken string) error {
	query := url.Values{}
	query.Set(constants.RefreshTokenField, refreshToken)
	query.Set(constants.AccessTokenField, accessToken)

	renewURL := joinURL(m.config.BaseURL, m.config.RenewPath) + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, renewURL, nil)
	if err != nil {
		return fmt.Errorf("building renewal request: %w", err)
	}

	m.setCommonHeaders(req)

	statusCode, body, err := m.roundTrip(req)
	if err != nil {
		return &pbxapi.TransportError{Op: http.MethodGet, URL: renewURL, Err: err}
	}

	if statusCode < 200 || statusCode >= 300 {
		return &pbxapi.SessionExpiredError{
			Detail: fmt.Sprintf("renewal rejected with status %d: %s", statusCode, excerptOrDefault(body, "empty body")),
		}
	}

	var result authResponse

	err = json.Unmarshal(body, &result)
	if err != nil {
		return &pbxapi.SessionExpiredError{Detail: "renewal returned non-JSON response: " + excerptOrDefault(body, "empty body")}
	}

	if result.Status != constants.StatusAuthorized {
		return &pbxapi.SessionExpiredError{Detail: fmt.Sprintf("renewal status %q", result.Status)}
	}

	if result.AccessToken == "" {
		return &pbxapi.SessionExpiredError{Detail: "renewal response missing access_token"}
	}

	// Some builds rotate the refresh token on renewal, some keep it.
	if result.RefreshToken == "" {
		result.RefreshToken = refreshToken
	}

	m.store.Set(&Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		ExpiresAt:    expiryFor(result.AccessToken, result.ExpiresIn),
	})

	return nil
}

func (m *SessionTokenManager) setCommonHeaders(req *http.Request) {
	userAgent := m.config.UserAgent
	if userAgent == "" {
		userAgent = constants.DefaultUserAgent
	}

	req.Header.Set(constants.HeaderUserAgent, userAgent)
	req.Header.Set("Accept", constants.ContentTypeJSON)
}

func (m *SessionTokenManager) roundTrip(req *http.Request) (int, []byte, error) {
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

func excerptOrDefault(body []byte, fallback string) string {
	excerpt := pbxapi.Truncate(strings.TrimSpace(string(body)), constants.DefaultBodyExcerptLimit)
	if excerpt == "" {
		return fallback
	}

	return excerpt
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

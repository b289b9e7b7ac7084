// Package http implements the HTTP transport for the PBX API with session
// handling, retries, and structured logging.
package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/voipops-io/pbxapi-client/internal/auth"
	"github.com/voipops-io/pbxapi-client/internal/constants"
	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
)

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client performs HTTP requests against the PBX API. Every request carries
// the current access token; when the PBX reports an expired session the
// client renews the session through its token manager and retries the
// request exactly once.
type Client struct {
	baseURL      string
	tokenManager auth.TokenManager
	httpClient   *retryablehttp.Client
	logger       pbxapi.Logger
	debug        bool
	userAgent    string
	excerptLimit int
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(logger pbxapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithRetryConfig enables transport-level retries for connection failures,
// rate limiting, and server errors. The PBX client does not retry by
// default.
func WithRetryConfig(maxRetries int, minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = minWait
		c.httpClient.RetryWaitMax = maxWait
	}
}

// WithTLSSkipVerify disables TLS certificate verification. Issabel systems
// commonly run with self-signed certificates.
func WithTLSSkipVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}

		c.httpClient.HTTPClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // explicit opt-in for self-signed PBX certificates
		}
	}
}

// WithExcerptLimit caps the length of response body excerpts embedded in
// errors.
func WithExcerptLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.excerptLimit = limit
		}
	}
}

// NewClient creates a new HTTP client for the given base URL. A nil token
// manager produces an unauthenticated client.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	// Hand back the last response when retries are exhausted so status
	// handling stays in one place.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokenManager: tokenManager,
		httpClient:   retryClient,
		userAgent:    constants.DefaultUserAgent,
		excerptLimit: constants.DefaultBodyExcerptLimit,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes a request. An expired session triggers one renewal followed by
// a single retry; a second rejection surfaces as an AuthError. Other
// non-2xx responses return both the response and an APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if !c.sessionExpired(resp) {
		return c.finish(resp)
	}

	if c.tokenManager == nil {
		return resp, &pbxapi.AuthError{
			StatusCode: resp.StatusCode,
			Detail:     c.excerpt(resp.Body, "session expired"),
		}
	}

	err = c.tokenManager.RefreshToken(ctx)
	if err != nil {
		return resp, fmt.Errorf("failed to renew session: %w", err)
	}

	retried, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.sessionExpired(retried) {
		return retried, &pbxapi.AuthError{
			StatusCode: retried.StatusCode,
			Detail:     c.excerpt(retried.Body, "session expired after renewal"),
		}
	}

	return c.finish(retried)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// send performs a single HTTP exchange without interpreting the status code.
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	requestURL := c.buildURL(req)

	var rawBody []byte

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}

		rawBody = encoded
	}

	var bodyArg interface{}
	if rawBody != nil {
		bodyArg = rawBody
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, requestURL, bodyArg)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)
	httpReq.Header.Set(constants.HeaderRequestID, uuid.NewString())

	if rawBody != nil {
		httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, err
		}

		httpReq.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+token)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    requestURL,
			"bytes":  len(rawBody),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &pbxapi.TransportError{Op: req.Method, URL: requestURL, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := readBody(httpResp)
	if err != nil {
		return nil, &pbxapi.TransportError{Op: req.Method, URL: requestURL, Err: err}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method": req.Method,
			"url":    requestURL,
			"status": resp.StatusCode,
			"bytes":  len(resp.Body),
		})
	}

	return resp, nil
}

// finish maps non-2xx responses to errors, returning the response either way.
func (c *Client) finish(resp *Response) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	return resp, &pbxapi.APIError{
		StatusCode: resp.StatusCode,
		Excerpt:    c.excerpt(resp.Body, ""),
	}
}

// sessionExpired reports whether the PBX rejected the session. Older
// Issabel builds answer with 200 and an in-band expired marker instead of
// a 401.
func (c *Client) sessionExpired(resp *Response) bool {
	if resp.StatusCode == http.StatusUnauthorized {
		return true
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	var probe struct {
		Status string `json:"status"`
	}

	err := json.Unmarshal(resp.Body, &probe)

	return err == nil && probe.Status == constants.StatusExpired
}

// buildURL joins the base URL, request path, and query string.
func (c *Client) buildURL(req *Request) string {
	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	requestURL := c.baseURL + path
	if len(req.Query) > 0 {
		requestURL += "?" + req.Query.Encode()
	}

	return requestURL
}

// excerpt trims a response body for embedding in an error message.
func (c *Client) excerpt(body []byte, fallback string) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fallback
	}

	return pbxapi.Truncate(trimmed, c.excerptLimit)
}

func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}


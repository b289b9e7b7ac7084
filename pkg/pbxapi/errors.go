package pbxapi

import (
	"errors"
	"fmt"
)

// AuthError represents rejected credentials or an exhausted auth retry: the
// PBX refused the request even after the one refresh-and-retry cycle.
type AuthError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Detail     string `json:"detail"      yaml:"detail"`
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("authentication failed: %s", e.Detail)
	}

	return fmt.Sprintf("authentication failed: %s (status: %d)", e.Detail, e.StatusCode)
}

// SessionExpiredError indicates the refresh token itself was rejected; the
// session cannot be renewed and a fresh Authenticate is required.
type SessionExpiredError struct {
	Detail string `json:"detail" yaml:"detail"`
}

// Error implements the error interface.
func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired: %s", e.Detail)
}

// APIError represents a non-2xx, non-auth response from the PBX API. Excerpt
// carries a bounded prefix of the response body for diagnostics.
type APIError struct {
	StatusCode int    `json:"status_code"       yaml:"status_code"`
	Excerpt    string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Excerpt == "" {
		return fmt.Sprintf("API error: status %d", e.StatusCode)
	}

	return fmt.Sprintf("API error: status %d: %s", e.StatusCode, e.Excerpt)
}

// UnknownOperationError indicates an operation name outside the
// (get|create|update|delete)_<resource> convention. It is deliberately loud
// so that typos do not get forwarded to the PBX as resource names.
type UnknownOperationError struct {
	Name string `json:"name" yaml:"name"`
}

// Error implements the error interface.
func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q: expected <verb>_<resource> with verb get, create, update, or delete", e.Name)
}

// TransportError represents a network-level failure (DNS, connection refused,
// timeout) before any HTTP status was received.
type TransportError struct {
	Op  string
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrBaseURLRequired     = errors.New("base URL is required")
	ErrResourceRequired    = errors.New("resource name is required")
	ErrIDRequired          = errors.New("resource id is required")
	ErrPayloadRequired     = errors.New("payload is required")
	ErrSearchTermRequired  = errors.New("search term is required")
	ErrNotAuthenticated    = errors.New("not authenticated: call Authenticate first")
	ErrMissingRefreshToken = errors.New("no refresh token available")
	ErrMissingAccessToken  = errors.New("no access token available")
)

// IsAuthError checks if the error is an authentication error.
func IsAuthError(err error) bool {
	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsSessionExpired checks if the error indicates a rejected refresh token.
func IsSessionExpired(err error) bool {
	expErr := &SessionExpiredError{}

	return errors.As(err, &expErr)
}

// IsAPIError checks if the error is a non-auth HTTP error from the PBX.
func IsAPIError(err error) bool {
	apiErr := &APIError{}

	return errors.As(err, &apiErr)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}

	return false
}

// IsUnknownOperation checks if the error came from resolving an operation
// name outside the verb/resource convention.
func IsUnknownOperation(err error) bool {
	opErr := &UnknownOperationError{}

	return errors.As(err, &opErr)
}

// IsTransportError checks if the error is a network-level failure.
func IsTransportError(err error) bool {
	transErr := &TransportError{}

	return errors.As(err, &transErr)
}

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
)

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		client, err := New(nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, pbxapi.ErrConfigRequired)
		assert.Nil(t, client)
	})

	t.Run("missing base URL", func(t *testing.T) {
		client, err := New(&pbxapi.Config{})
		require.Error(t, err)
		assert.ErrorIs(t, err, pbxapi.ErrBaseURLRequired)
		assert.Nil(t, client)
	})

	t.Run("valid config", func(t *testing.T) {
		client, err := New(&pbxapi.Config{BaseURL: "pbx.example.com"})
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.NotNil(t, client.GetTokenManager())
		assert.Equal(t, "https://pbx.example.com/pbxapi", client.baseURL)
	})
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		rawURL   string
		useSSL   *bool
		expected string
		wantErr  bool
	}{
		{
			name:     "bare host defaults to https",
			rawURL:   "pbx.example.com",
			expected: "https://pbx.example.com/pbxapi",
		},
		{
			name:     "ssl disabled",
			rawURL:   "pbx.example.com",
			useSSL:   pbxapi.Bool(false),
			expected: "http://pbx.example.com/pbxapi",
		},
		{
			name:     "ssl enabled explicitly",
			rawURL:   "pbx.example.com",
			useSSL:   pbxapi.Bool(true),
			expected: "https://pbx.example.com/pbxapi",
		},
		{
			name:     "explicit scheme wins over useSSL",
			rawURL:   "http://pbx.example.com",
			useSSL:   pbxapi.Bool(true),
			expected: "http://pbx.example.com/pbxapi",
		},
		{
			name:     "api root already present",
			rawURL:   "https://pbx.example.com/pbxapi",
			expected: "https://pbx.example.com/pbxapi",
		},
		{
			name:     "trailing slash trimmed",
			rawURL:   "https://pbx.example.com/",
			expected: "https://pbx.example.com/pbxapi",
		},
		{
			name:     "host with port",
			rawURL:   "pbx.example.com:8443",
			expected: "https://pbx.example.com:8443/pbxapi",
		},
		{
			name:    "empty",
			rawURL:  "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			rawURL:  "   ",
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			normalized, err := NormalizeBaseURL(testCase.rawURL, testCase.useSSL)

			if testCase.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, pbxapi.ErrBaseURLRequired)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testCase.expected, normalized)
			}
		})
	}
}

func TestClient_Authenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/pbxapi/authenticate", request.URL.Path)

		err := request.ParseForm()
		require.NoError(t, err)
		assert.Equal(t, "admin", request.Form.Get("user"))

		_ = json.NewEncoder(writer).Encode(map[string]string{
			"access_token":  "issued-access",
			"refresh_token": "issued-refresh",
		})
	}))
	defer server.Close()

	client, err := New(&pbxapi.Config{BaseURL: server.URL})
	require.NoError(t, err)

	err = client.Authenticate(context.Background(), "admin", "secret")
	require.NoError(t, err)

	session := client.Session()
	assert.True(t, session.Authenticated())
	assert.Equal(t, "issued-access", session.AccessToken)
	assert.Equal(t, "issued-refresh", session.RefreshToken)
}

func TestClient_AutoLoginOnFirstRequest(t *testing.T) {
	logins := 0

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/pbxapi/authenticate":
			logins++

			_ = json.NewEncoder(writer).Encode(map[string]string{
				"access_token":  "issued-access",
				"refresh_token": "issued-refresh",
			})
		case "/pbxapi/extensions":
			assert.Equal(t, "Bearer issued-access", request.Header.Get("Authorization"))
			_ = json.NewEncoder(writer).Encode([]map[string]string{{"extension": "1001"}})
		default:
			t.Errorf("unexpected path %s", request.URL.Path)
		}
	}))
	defer server.Close()

	client, err := New(&pbxapi.Config{
		BaseURL:  server.URL,
		Username: "admin",
		Password: "secret",
	})
	require.NoError(t, err)

	doc, err := client.List(context.Background(), "extensions", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, logins)
	assert.Len(t, doc.Records(), 1)
}

func TestClient_RenewToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/pbxapi/authenticate/renewtoken", request.URL.Path)
		assert.Equal(t, "seed-refresh", request.URL.Query().Get("refresh_token"))
		assert.Equal(t, "seed-access", request.URL.Query().Get("access_token"))

		_ = json.NewEncoder(writer).Encode(map[string]string{
			"status":        "authorized",
			"access_token":  "renewed-access",
			"refresh_token": "renewed-refresh",
		})
	}))
	defer server.Close()

	client, err := New(&pbxapi.Config{
		BaseURL:      server.URL,
		AccessToken:  "seed-access",
		RefreshToken: "seed-refresh",
	})
	require.NoError(t, err)

	err = client.RenewToken(context.Background())
	require.NoError(t, err)

	session := client.Session()
	assert.Equal(t, "renewed-access", session.AccessToken)
	assert.Equal(t, "renewed-refresh", session.RefreshToken)
}

func TestClient_UnauthenticatedRequestFails(t *testing.T) {
	client, err := New(&pbxapi.Config{BaseURL: "http://pbx.invalid"})
	require.NoError(t, err)

	_, err = client.List(context.Background(), "extensions", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, pbxapi.ErrNotAuthenticated)
}

// plainTokenManager is a TokenManager without session support.
type plainTokenManager struct {
	token string
}

func (m *plainTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

func (m *plainTokenManager) RefreshToken(ctx context.Context) error {
	return nil
}

func (m *plainTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

func TestNewWithTokenManager(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer injected-token", request.Header.Get("Authorization"))
		_ = json.NewEncoder(writer).Encode([]map[string]string{{"extension": "1001"}})
	}))
	defer server.Close()

	client, err := NewWithTokenManager(&pbxapi.Config{BaseURL: server.URL}, &plainTokenManager{token: "injected-token"})
	require.NoError(t, err)

	_, err = client.List(context.Background(), "extensions", nil)
	require.NoError(t, err)

	// A bare token manager cannot log in or expose session state.
	err = client.Authenticate(context.Background(), "admin", "secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSessionManager)
	assert.False(t, client.Session().Authenticated())
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voipops-io/pbxapi-client/internal/constants"
	internalhttp "github.com/voipops-io/pbxapi-client/internal/http"
	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
)

// Test static errors.
var (
	ErrTestSomeError = errors.New("some error")
)

// NewTestClient creates a new test client with the given base URL. No token
// manager is attached and the base URL is used verbatim, so test servers
// can serve resource paths at their root.
func NewTestClient(baseURL string) *Client {
	httpClient := internalhttp.NewClient(baseURL, nil)

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		excerptLimit: constants.DefaultBodyExcerptLimit,
		reloadPath:   constants.DefaultReloadPath,
		reloadMethod: constants.DefaultReloadMethod,
	}
}

// TestOperation represents a generic resource operation test case. The fake
// PBX answers reload requests on the default reload path automatically so
// mutation cases exercise their follow-up request without extra setup.
type TestOperation struct {
	Name           string
	Invoke         func(context.Context, *Client) (*pbxapi.Document, error)
	ExpectedPath   string
	ExpectedMethod string
	ExpectedQuery  string
	StatusCode     int
	Response       interface{}
	RawResponse    string
	WantErr        bool
	ErrMessage     string
}

// RunOperationTests runs a series of resource operation tests.
func RunOperationTests(t *testing.T, tests []TestOperation) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				if request.URL.Path == "/"+constants.DefaultReloadPath {
					writer.Header().Set("Content-Type", "application/json")
					_ = json.NewEncoder(writer).Encode(map[string]string{"status": "reloaded"})

					return
				}

				if testCase.ExpectedPath != "" {
					assert.Equal(t, testCase.ExpectedPath, request.URL.Path)
				}

				if testCase.ExpectedMethod != "" {
					assert.Equal(t, testCase.ExpectedMethod, request.Method)
				}

				if testCase.ExpectedQuery != "" {
					assert.Equal(t, testCase.ExpectedQuery, request.URL.RawQuery)
				}

				writer.Header().Set("Content-Type", "application/json")

				statusCode := testCase.StatusCode
				if statusCode == 0 {
					statusCode = http.StatusOK
				}

				writer.WriteHeader(statusCode)

				switch {
				case testCase.RawResponse != "":
					_, _ = writer.Write([]byte(testCase.RawResponse))
				case testCase.Response != nil:
					_ = json.NewEncoder(writer).Encode(testCase.Response)
				}
			}))
			defer server.Close()

			client := NewTestClient(server.URL)

			result, err := testCase.Invoke(context.Background(), client)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
			}
		})
	}
}

// CountingServer tracks requests per path, for asserting how many reload
// requests a mutation produced.
type CountingServer struct {
	*httptest.Server

	counts map[string]int
}

// NewCountingServer builds a fake PBX that records request counts per path
// and answers each path with the configured handler result.
func NewCountingServer(t *testing.T, handlers map[string]func(writer http.ResponseWriter, request *http.Request)) *CountingServer {
	t.Helper()

	counting := &CountingServer{counts: make(map[string]int)}

	counting.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		counting.counts[request.URL.Path]++

		handler, ok := handlers[request.URL.Path]
		if !ok {
			t.Errorf("unexpected request path %s", request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)

			return
		}

		handler(writer, request)
	}))

	return counting
}

// Count returns how many requests hit the given path.
func (s *CountingServer) Count(path string) int {
	return s.counts[path]
}

// JSONHandler answers with a fixed status code and JSON payload.
func JSONHandler(statusCode int, payload interface{}) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(statusCode)

		if payload != nil {
			_ = json.NewEncoder(writer).Encode(payload)
		}
	}
}

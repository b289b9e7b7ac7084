package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoginCommand(t *testing.T) {
	cmd := NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)
	assert.Equal(t, "Login to a PBX server", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("server"))
	assert.NotNil(t, cmd.Flags().Lookup("username"))
	assert.NotNil(t, cmd.Flags().Lookup("password"))
}

func TestNewLogoutCommand(t *testing.T) {
	cmd := NewLogoutCommand()
	assert.Equal(t, "logout", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("server"))
}

func TestExtractHostFromEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		expected string
	}{
		{
			name:     "https endpoint",
			endpoint: "https://pbx.example.com",
			expected: "pbx.example.com",
		},
		{
			name:     "http endpoint",
			endpoint: "http://pbx.example.com",
			expected: "pbx.example.com",
		},
		{
			name:     "endpoint with port",
			endpoint: "https://pbx.example.com:8443",
			expected: "pbx.example.com",
		},
		{
			name:     "endpoint with path",
			endpoint: "https://pbx.example.com/pbxapi",
			expected: "pbx.example.com",
		},
		{
			name:     "bare host",
			endpoint: "pbx.example.com",
			expected: "pbx.example.com",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, extractHostFromEndpoint(testCase.endpoint))
		})
	}
}

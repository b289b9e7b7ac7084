//go:build integration
// +build integration

package integration

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorkflow_CompleteExtensionJourney tests a complete extension management
// journey through the CLI
func TestWorkflow_CompleteExtensionJourney(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	// Setup
	require.NoError(t, runner.SetupServer("test-pbx"))
	require.NoError(t, runner.Login("test-pbx"))

	extension := GenerateTestExtension()

	defer func() {
		// Cleanup
		runner.CleanupResource("extensions", extension)
	}()

	// 1. Create extension
	stdout, stderr, err := runner.Run("create", "extensions",
		"--data", "extension="+extension,
		"--data", "name=Integration Test",
		"--data", "tech=sip")
	require.NoError(t, err, "Failed to create extension: %s", stderr)

	// 2. Verify extension with JSON output
	stdout, stderr, err = runner.Run("get", "extensions", extension, "--output", "json")
	require.NoError(t, err, "Failed to get extension with JSON output: %s", stderr)
	AssertJSONOutput(t, stdout)
	assert.Contains(t, stdout, extension)

	// 3. Extension appears in listings
	WaitForCondition(t, func() bool {
		stdout, _, err := runner.Run("list", "extensions", "--output", "json")

		return err == nil && strings.Contains(stdout, extension)
	}, 10*time.Second, "extension visible in list")

	// 4. Update extension
	stdout, stderr, err = runner.Run("update", "extensions", extension,
		"--data", "extension="+extension,
		"--data", "name=Integration Test Updated",
		"--data", "tech=sip")
	require.NoError(t, err, "Failed to update extension: %s", stderr)

	// 5. Verify the update
	stdout, stderr, err = runner.Run("get", "extensions", extension)
	require.NoError(t, err, "Failed to get updated extension: %s", stderr)
	assert.Contains(t, stdout, "Integration Test Updated")

	// 6. Search finds the extension
	stdout, stderr, err = runner.Run("search", "extensions", extension)
	require.NoError(t, err, "Failed to search extensions: %s", stderr)
	assert.Contains(t, stdout, extension)

	// 7. Restrict fields
	stdout, stderr, err = runner.Run("get", "extensions", extension,
		"--fields", "extension,name", "--output", "json")
	require.NoError(t, err, "Failed to get extension with field filter: %s", stderr)
	AssertJSONOutput(t, stdout)

	// 8. Delete extension
	stdout, stderr, err = runner.Run("delete", "extensions", extension)
	require.NoError(t, err, "Failed to delete extension: %s", stderr)
}

// TestWorkflow_OutputFormats tests all output formats work correctly
func TestWorkflow_OutputFormats(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	// Setup
	require.NoError(t, runner.SetupServer("test-pbx"))
	require.NoError(t, runner.Login("test-pbx"))

	formats := []string{"table", "json", "yaml"}

	for _, format := range formats {
		t.Run(fmt.Sprintf("list_%s_format", format), func(t *testing.T) {
			stdout, stderr, err := runner.Run("list", "extensions", "--output", format)
			require.NoError(t, err, "Failed to list with %s format: %s", format, stderr)

			switch format {
			case "json":
				AssertJSONOutput(t, stdout)
			case "yaml":
				AssertYAMLOutput(t, stdout)
			}
		})
	}
}

// TestWorkflow_ErrorScenarios tests error handling in real scenarios
func TestWorkflow_ErrorScenarios(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	testCases := []struct {
		name        string
		setup       func() error
		args        []string
		expectError bool
		errorText   string
	}{
		{
			name:        "list without configured servers",
			args:        []string{"list", "extensions"},
			expectError: true,
			errorText:   "no PBX servers configured",
		},
		{
			name: "list without authentication",
			setup: func() error {
				return runner.SetupServer("test-pbx")
			},
			args:        []string{"list", "extensions"},
			expectError: true,
		},
		{
			name: "get non-existent record",
			setup: func() error {
				return runner.Login("test-pbx")
			},
			args:        []string{"get", "extensions", "999999"},
			expectError: true,
		},
		{
			name:        "call with malformed operation name",
			args:        []string{"call", "restart_pbx"},
			expectError: true,
			errorText:   "unknown operation",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setup != nil {
				require.NoError(t, tc.setup())
			}

			stdout, stderr, err := runner.Run(tc.args...)
			if tc.expectError {
				assert.Error(t, err, "Expected error for: %s", tc.name)
				if tc.errorText != "" {
					assert.Contains(t, stderr, tc.errorText, "Expected specific error text")
				}
			} else {
				assert.NoError(t, err, "Unexpected error for: %s\nStderr: %s", tc.name, stderr)
			}

			_ = stdout
		})
	}
}

// TestWorkflow_TokenManagement tests token lifecycle management
func TestWorkflow_TokenManagement(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	// Setup
	require.NoError(t, runner.SetupServer("test-pbx"))
	require.NoError(t, runner.Login("test-pbx"))

	// Token status shows an authenticated session
	stdout, stderr, err := runner.Run("token", "status")
	require.NoError(t, err, "Failed to get token status: %s", stderr)
	assert.Contains(t, stdout, "Token present")

	// Manual renewal through the stored refresh token
	stdout, stderr, err = runner.Run("token", "renew")
	require.NoError(t, err, "Failed to renew token: %s", stderr)
	assert.Contains(t, stdout, "Token renewed successfully")

	// The renewed token still works
	stdout, stderr, err = runner.Run("list", "extensions")
	require.NoError(t, err, "Failed to list after renewal: %s", stderr)

	// Logout clears the session
	stdout, stderr, err = runner.Run("logout")
	require.NoError(t, err, "Failed to logout: %s", stderr)

	stdout, stderr, err = runner.Run("token", "status")
	require.NoError(t, err, "Failed to get token status after logout: %s", stderr)
	assert.Contains(t, stdout, "No token")
}

// TestWorkflow_DynamicOperations tests the call command against a live PBX
func TestWorkflow_DynamicOperations(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	// Setup
	require.NoError(t, runner.SetupServer("test-pbx"))
	require.NoError(t, runner.Login("test-pbx"))

	// List through the dynamic path
	stdout, stderr, err := runner.Run("call", "get_extensions", "--output", "json")
	require.NoError(t, err, "Failed to call get_extensions: %s", stderr)
	AssertJSONOutput(t, stdout)

	// Create and delete through the dynamic path
	extension := GenerateTestExtension()

	defer runner.CleanupResource("extensions", extension)

	stdout, stderr, err = runner.Run("call", "create_extensions",
		"--data", "extension="+extension,
		"--data", "name=Dynamic Test",
		"--data", "tech=sip")
	require.NoError(t, err, "Failed to call create_extensions: %s", stderr)

	stdout, stderr, err = runner.Run("call", "delete_extensions", "--id", extension)
	require.NoError(t, err, "Failed to call delete_extensions: %s", stderr)
}

// TestWorkflow_MultiServer tests switching between configured servers
func TestWorkflow_MultiServer(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	// Register the same PBX under two names
	require.NoError(t, runner.SetupServer("pbx-one"))
	require.NoError(t, runner.SetupServer("pbx-two"))

	stdout, stderr, err := runner.Run("servers", "list")
	require.NoError(t, err, "Failed to list servers: %s", stderr)
	assert.Contains(t, stdout, "pbx-one")
	assert.Contains(t, stdout, "pbx-two")
	assert.Contains(t, stdout, "(current)")

	// Switch the current server
	stdout, stderr, err = runner.Run("servers", "use", "pbx-two")
	require.NoError(t, err, "Failed to switch server: %s", stderr)

	// Sessions are per server, so the second name needs its own login
	require.NoError(t, runner.Login("pbx-two"))

	stdout, stderr, err = runner.Run("list", "extensions")
	require.NoError(t, err, "Failed to list on switched server: %s", stderr)

	// Delete one registration; the other keeps working
	stdout, stderr, err = runner.Run("servers", "delete", "pbx-one")
	require.NoError(t, err, "Failed to delete server: %s", stderr)

	stdout, stderr, err = runner.Run("list", "extensions")
	require.NoError(t, err, "Failed to list after server delete: %s", stderr)
}

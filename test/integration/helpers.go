//go:build integration
// +build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Endpoint   string
	Username   string
	Password   string
	SkipSSL    bool
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Endpoint:   os.Getenv("PBX_ENDPOINT"),
		Username:   os.Getenv("PBX_USERNAME"),
		Password:   os.Getenv("PBX_PASSWORD"),
		SkipSSL:    os.Getenv("PBX_SKIP_SSL") == "true",
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("PBXAPI_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the pbxapi binary
func getBinaryPath() string {
	if path := os.Getenv("PBXAPI_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../pbxapi",
		"./pbxapi",
		"../pbxapi",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "pbxapi" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	if config.Endpoint == "" {
		t.Skip("PBX_ENDPOINT not set, skipping integration test")
	}

	if _, err := os.Stat(config.BinaryPath); os.IsNotExist(err) {
		t.Skipf("pbxapi binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner provides utilities for running pbxapi commands
type CommandRunner struct {
	config  *TestConfig
	homeDir string
	t       *testing.T
}

// NewCommandRunner creates a new command runner. Each runner gets its own HOME
// so the CLI config file never touches the developer's real ~/.pbxapi.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config:  config,
		homeDir: t.TempDir(),
		t:       t,
	}
}

// Run executes a pbxapi command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+runner.homeDir)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunWithInput executes a pbxapi command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+runner.homeDir)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running with input: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// SetupServer registers the PBX under test as a named server
func (runner *CommandRunner) SetupServer(name string) error {
	args := []string{"servers", "add", name, runner.config.Endpoint}
	if runner.config.SkipSSL {
		args = append(args, "--skip-ssl-validation")
	}

	_, stderr, err := runner.Run(args...)
	if err != nil {
		return fmt.Errorf("failed to add server: %s", stderr)
	}

	return nil
}

// Login authenticates against the configured PBX
func (runner *CommandRunner) Login(server string) error {
	if runner.config.Username == "" || runner.config.Password == "" {
		return fmt.Errorf("no authentication credentials provided")
	}

	_, stderr, err := runner.Run("login",
		"--server", server,
		"--username", runner.config.Username,
		"--password", runner.config.Password)
	if err != nil {
		return fmt.Errorf("failed to login: %s", stderr)
	}

	return nil
}

// GenerateTestExtension creates a unique extension number in the test range
func GenerateTestExtension() string {
	return fmt.Sprintf("9%03d", time.Now().Unix()%1000)
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

// CleanupResource attempts to delete a test record. Every resource shares the
// same delete shape, so no per-type handling is needed.
func (runner *CommandRunner) CleanupResource(resource, id string) {
	stdout, stderr, err := runner.Run("delete", resource, id)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %s: %s\nStderr: %s", resource, id, stdout, stderr)
	}
}

// WaitForCondition waits for a condition to be met with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

// AssertYAMLOutput verifies command output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	output = strings.TrimSpace(output)
	if strings.Contains(output, "---") || strings.Contains(output, ":") {
		return // Looks like YAML
	}
	t.Errorf("Output does not appear to be YAML: %s", output)
}

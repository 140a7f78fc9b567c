//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	Token      string
	Username   string
	BaseURL    string
	BinaryPath string
	ConfigFile string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig(t *testing.T) *TestConfig {
	t.Helper()

	return &TestConfig{
		Token:      os.Getenv("APIFY_TOKEN"),
		Username:   os.Getenv("APIFY_USERNAME"),
		BaseURL:    os.Getenv("APIFY_API_BASE_URL"),
		BinaryPath: binaryPath(),
		ConfigFile: filepath.Join(t.TempDir(), "config.yml"),
		Verbose:    os.Getenv("APIFY_VERBOSE") == "true",
	}
}

func binaryPath() string {
	if path := os.Getenv("APIFY_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../apify", "./apify", "../apify"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "apify"
}

// SkipIfMissingConfig skips the test when no token or binary is available.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Token == "" {
		t.Skip("APIFY_TOKEN not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("apify binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs the apify binary with an isolated config file.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{config: config, t: t}
}

// Run executes an apify command and returns its output.
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes an apify command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (string, string, error) {
	args = append([]string{"--config", runner.config.ConfigFile}, args...)

	// #nosec G204 -- the binary path comes from the test environment
	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = append(os.Environ(), "APIFY_TOKEN="+runner.config.Token)

	if runner.config.BaseURL != "" {
		cmd.Env = append(cmd.Env, "APIFY_API_BASE_URL="+runner.config.BaseURL)
	}

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON executes an apify command with JSON output and decodes it into v.
func (runner *CommandRunner) RunJSON(v interface{}, args ...string) {
	runner.t.Helper()

	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	require.NoError(runner.t, err, "apify %s: %s", strings.Join(args, " "), stderr)
	require.NoError(runner.t, json.Unmarshal([]byte(stdout), v), "output: %s", stdout)
}

// CleanupResource deletes a storage created by a test.
func (runner *CommandRunner) CleanupResource(group, id string) {
	stdout, stderr, err := runner.Run(group, "delete", id, "--force")
	if err != nil {
		runner.t.Logf("Cleanup warning for %s %s: %s\nStderr: %s", group, id, stdout, stderr)
	}
}

// GenerateTestName creates a unique storage name. Storage names allow
// letters, digits and dashes only.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

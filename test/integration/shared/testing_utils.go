// Package shared contains testing utilities shared between integration tests.
// This file provides common functions for setting up test environments,
// capturing output, and running stand commands in-process.
package shared

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/stand/cmd"
)

// SetupTestEnvironment changes into tempDir for the rest of the test and
// clears every STAND_* variable. The audit log goes to a separate temporary
// directory and is returned.
func SetupTestEnvironment(t *testing.T, tempDir string) string {
	t.Helper()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		cmd.ResetGlobalState()
	})

	for _, key := range []string{"STAND_PROJECT_DIR", "STAND_KEY_FILE", "STAND_PRIVATE_KEY", "STAND_LOCK_WAIT", "STAND_NO_AUDIT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	auditLog := filepath.Join(t.TempDir(), "audit.jsonl")
	t.Setenv("STAND_AUDIT_LOG", auditLog)
	return auditLog
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

// CaptureOutput captures stdout and stderr separately during function execution.
func CaptureOutput(fn func() error) (string, string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, stdoutReader)
		stdoutChan <- buf.String()
	}()
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, stderrReader)
		stderrChan <- buf.String()
	}()

	// Execute the function
	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	// Restore original stdout and stderr
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan, <-stderrChan, err
}

// RunStand executes the stand CLI with args and returns what it printed to
// stdout and stderr.
func RunStand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return CaptureOutput(func() error {
		cmd.ResetGlobalState()
		root := cmd.GetRootCmd()
		root.SetArgs(args)
		return root.Execute()
	})
}

// MustRunStand is RunStand that fails the test on error.
func MustRunStand(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := RunStand(t, args...)
	if err != nil {
		t.Fatalf("stand %v failed: %v\nstdout:\n%s\nstderr:\n%s", args, err, stdout, stderr)
	}
	return stdout
}

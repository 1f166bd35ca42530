// This file provides common functions for setting up test environments,
// capturing output, and running commands.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// testProject is a small document used by most command tests.
const testProject = `version = "2.0"

[common]
APP_NAME = "shop"

[environments.dev]
description = "Local development"
color = "green"
DB_HOST = "localhost"
DATABASE_URL = "postgres://${DB_USER}@localhost/shop"

[environments.prod]
description = "Production"
extends = "dev"
color = "red"
requires_confirmation = true
DB_HOST = "db.internal"

[settings]
default_environment = "dev"
`

// setupTestEnvironment changes into tempDir and isolates the STAND_*
// environment so the developer's own settings never leak into a test.
func setupTestEnvironment(t *testing.T, tempDir string) {
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
		ResetGlobalState()
	})

	for _, key := range []string{"STAND_PROJECT_DIR", "STAND_KEY_FILE", "STAND_PRIVATE_KEY", "STAND_LOCK_WAIT", "STAND_NO_AUDIT"} {
		unsetenv(t, key)
	}
	t.Setenv("STAND_AUDIT_LOG", filepath.Join(t.TempDir(), "audit.jsonl"))
	t.Setenv("DB_USER", "app")
}

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

// writeProject writes a .stand.toml into dir.
func writeProject(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".stand.toml"), []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write project: %v", err)
	}
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	// Channel to collect output
	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	// Start goroutines to read from pipes
	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
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

	return <-stdoutChan + <-stderrChan, err
}

// captureStdout is captureOutput for commands whose stdout carries data.
func captureStdout(fn func() error) (stdout, stderr string, err error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outChan := make(chan string, 1)
	errChan := make(chan string, 1)
	for _, p := range []struct {
		r  *os.File
		ch chan string
	}{{stdoutReader, outChan}, {stderrReader, errChan}} {
		go func(r *os.File, ch chan string) {
			var buf bytes.Buffer
			_, _ = io.Copy(&buf, r)
			ch <- buf.String()
		}(p.r, p.ch)
	}

	err = fn()

	stdoutWriter.Close()
	stderrWriter.Close()
	os.Stdout = originalStdout
	os.Stderr = originalStderr
	return <-outChan, <-errChan, err
}

// withStdin feeds data to os.Stdin for the rest of the test.
func withStdin(t *testing.T, data string) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	if _, err := w.WriteString(data); err != nil {
		t.Fatalf("Failed to write stdin: %v", err)
	}
	w.Close()

	original := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = original
		r.Close()
	})
}

// createTestCLI returns the root command set up to run args.
func createTestCLI(args []string, verboseFlag, debugFlag bool) *cobra.Command {
	ResetGlobalState()
	verbose = verboseFlag
	debug = debugFlag

	RootCmd.SetArgs(args)
	return RootCmd
}

// runCommand executes stand with args and returns everything it printed.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return captureOutput(func() error {
		return createTestCLI(args, false, false).Execute()
	})
}

// initializeProject runs stand init in the current directory.
func initializeProject(t *testing.T) {
	t.Helper()
	output, err := runCommand(t, "init")
	if err != nil {
		t.Fatalf("Failed to initialize project: %v\n%s", err, output)
	}
}

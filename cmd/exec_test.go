package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("exec tests use /bin/sh")
	}
}

func TestExec(t *testing.T) {
	skipWithoutShell(t)
	tempDir := t.TempDir()
	setupTestEnvironment(t, tempDir)
	writeProject(t, tempDir, testProject)
	t.Setenv("DB_HOST", "from-host")

	out := filepath.Join(tempDir, "out.txt")
	output, err := runCommand(t, "exec", "dev", "--", "sh", "-c", `printf '%s|%s' "$DB_HOST" "$DATABASE_URL" > "$0"`, out)
	require.NoError(t, err, output)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "localhost|postgres://app@localhost/shop", string(data), "resolved values replace the host's")
}

func TestExecDefaultEnvironment(t *testing.T) {
	skipWithoutShell(t)
	tempDir := t.TempDir()
	setupTestEnvironment(t, tempDir)
	writeProject(t, tempDir, testProject)

	out := filepath.Join(tempDir, "out.txt")
	output, err := runCommand(t, "exec", "--", "sh", "-c", `printf '%s' "$APP_NAME" > "$0"`, out)
	require.NoError(t, err, output)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "shop", string(data))
}

func TestExecPropagatesExitCode(t *testing.T) {
	skipWithoutShell(t)
	tempDir := t.TempDir()
	setupTestEnvironment(t, tempDir)
	writeProject(t, tempDir, testProject)

	_, err := runCommand(t, "exec", "dev", "--", "sh", "-c", "exit 3")

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected an exit error, got %v", err)
	assert.Equal(t, 3, exitErr.Code)
}

func TestExecRequiresConfirmation(t *testing.T) {
	skipWithoutShell(t)
	tempDir := t.TempDir()
	setupTestEnvironment(t, tempDir)
	writeProject(t, tempDir, testProject)
	marker := filepath.Join(tempDir, "ran")

	output, err := runCommand(t, "exec", "prod", "--", "touch", marker)
	require.Error(t, err)
	assert.Contains(t, output, "requires confirmation")
	assert.NoFileExists(t, marker)

	output, err = runCommand(t, "exec", "prod", "--yes", "--", "touch", marker)
	require.NoError(t, err, output)
	assert.FileExists(t, marker)
}

func TestExecWithoutCommand(t *testing.T) {
	tempDir := t.TempDir()
	setupTestEnvironment(t, tempDir)
	writeProject(t, tempDir, testProject)

	_, err := runCommand(t, "exec", "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing command")
}

func TestMergeEnviron(t *testing.T) {
	base := []string{"PATH=/bin", "DB_HOST=host", "EMPTY="}
	got := mergeEnviron(base, map[string]string{"DB_HOST": "localhost", "B": "2", "A": "1"})
	assert.Equal(t, []string{"PATH=/bin", "EMPTY=", "A=1", "B=2", "DB_HOST=localhost"}, got)
}

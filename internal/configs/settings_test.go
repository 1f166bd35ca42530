package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOptionsDefaults(t *testing.T) {
	unsetenv(t, "STAND_KEY_FILE", "STAND_LOCK_WAIT", "STAND_AUDIT_LOG", "STAND_PROJECT_DIR")
	t.Setenv("XDG_DATA_HOME", "/data")

	opts, err := BuildOptions(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLockWait, opts.LockWait)
	assert.Equal(t, filepath.Join("/data", "stand", "audit.jsonl"), opts.AuditLog)
	assert.NotEmpty(t, opts.ProjectDir)
}

func TestBuildOptionsEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("STAND_LOCK_WAIT", "750ms")
	t.Setenv("STAND_KEY_FILE", "/keys/project.keys")
	t.Setenv("STAND_PRIVATE_KEY", "material")

	opts, err := BuildOptions(Options{})
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, opts.LockWait)
	assert.Equal(t, "/keys/project.keys", opts.KeyFile)
	assert.Equal(t, "material", opts.PrivateKey.Reveal())
	assert.Equal(t, "[REDACTED]", opts.PrivateKey.String())
}

func TestBuildOptionsZeroLockWait(t *testing.T) {
	t.Setenv("STAND_LOCK_WAIT", "0s")

	opts, err := BuildOptions(Options{})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), opts.LockWait, "zero means do not wait")
}

func TestBuildOptionsFlagsWin(t *testing.T) {
	t.Setenv("STAND_KEY_FILE", "/from/env")
	t.Setenv("STAND_PROJECT_DIR", "/env/project")

	opts, err := BuildOptions(Options{KeyFile: "/from/flag"})
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", opts.KeyFile)
	assert.Equal(t, "/env/project", opts.ProjectDir)
}

func TestBuildOptionsRejectsBadDuration(t *testing.T) {
	t.Setenv("STAND_LOCK_WAIT", "soon")

	_, err := BuildOptions(Options{})
	require.Error(t, err)
}

func TestKeyFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/p", KeyFileName), Options{}.KeyFilePath("/p"))
	assert.Equal(t, "/k", Options{KeyFile: "/k"}.KeyFilePath("/p"))
}

// unsetenv clears keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

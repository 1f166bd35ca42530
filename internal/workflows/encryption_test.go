package workflows

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PolarWolf314/stand/internal/configs"
	kerrors "github.com/PolarWolf314/stand/internal/errors"
	logger "github.com/PolarWolf314/stand/internal/logging"
	"github.com/PolarWolf314/stand/internal/secrets"
)

var prodAPIKey = secrets.VarRef{Environment: "prod", Name: "API_KEY"}

func TestEnableEncryption(t *testing.T) {
	ts := newProject(t, projectTOML)
	ctx := context.Background()

	result, err := EnableEncryption(ctx, ts.Session, EnableEncryptionOptions{Targets: []secrets.VarRef{prodAPIKey}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Encrypted)
	assert.Equal(t, filepath.Join(ts.root, configs.KeyFileName), result.KeyFile)
	assert.True(t, strings.HasPrefix(result.PublicKey, secrets.PublicKeyPrefix))
	assert.True(t, result.GitignoreUpdated)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(result.KeyFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	gitignore, err := os.ReadFile(filepath.Join(ts.root, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(gitignore), configs.KeyFileName+"\n")
	assert.Contains(t, string(gitignore), configs.LockFileName+"\n")

	raw, err := os.ReadFile(configs.PrimaryPath(ts.root))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "prod-secret-value")
	assert.Contains(t, string(raw), "[encryption]")
	assert.Contains(t, string(raw), `DB_HOST = "prod.internal"`, "values not named stay plain")

	assert.Equal(t, "prod-secret-value", ts.resolve(t, "prod")["API_KEY"])

	_, err = EnableEncryption(ctx, ts.Session, EnableEncryptionOptions{})
	require.ErrorIs(t, err, kerrors.ErrEncryptionAlreadyEnabled)
}

func TestEnableEncryptionUnknownTargetWritesNothing(t *testing.T) {
	ts := newProject(t, projectTOML)

	_, err := EnableEncryption(context.Background(), ts.Session, EnableEncryptionOptions{
		Targets: []secrets.VarRef{{Environment: "prod", Name: "MISSING"}},
	})
	require.ErrorIs(t, err, kerrors.ErrVariableNotFound)

	assert.NoFileExists(t, filepath.Join(ts.root, configs.KeyFileName))
	assert.False(t, ts.reload(t).EncryptionEnabled())
}

func TestResolveEncryptedWithoutKey(t *testing.T) {
	ts := newProject(t, projectTOML)
	ctx := context.Background()

	_, err := EnableEncryption(ctx, ts.Session, EnableEncryptionOptions{Targets: []secrets.VarRef{prodAPIKey}})
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(ts.root, configs.KeyFileName)))

	_, err = Resolve(ctx, ts.Session, ResolveOptions{Environment: "prod"})
	require.ErrorIs(t, err, kerrors.ErrMissingKey)
	assert.Equal(t, kerrors.StageDecrypt, stageOf(t, err))

	// Environments without ciphertext never touch the key.
	assert.Equal(t, "localhost", ts.resolve(t, "dev")["DB_HOST"])

	raw, err := Resolve(ctx, ts.Session, ResolveOptions{Environment: "prod", Raw: true})
	require.NoError(t, err)
	entry, ok := raw.Environment.Get("API_KEY")
	require.True(t, ok)
	assert.True(t, entry.Raw.IsEncrypted())
	assert.False(t, entry.Decrypted)
	assert.Empty(t, entry.Value)
}

func TestResolveWithInlineKey(t *testing.T) {
	ts := newProject(t, projectTOML)
	ctx := context.Background()

	_, err := EnableEncryption(ctx, ts.Session, EnableEncryptionOptions{Targets: []secrets.VarRef{prodAPIKey}})
	require.NoError(t, err)

	keyFile := filepath.Join(ts.root, configs.KeyFileName)
	pemData, err := os.ReadFile(keyFile)
	require.NoError(t, err)
	require.NoError(t, os.Remove(keyFile))

	ts.Options.PrivateKey = logger.Secret(pemData)
	assert.Equal(t, "prod-secret-value", ts.resolve(t, "prod")["API_KEY"])
}

func TestSetEncryptedValue(t *testing.T) {
	ts := newProject(t, projectTOML)
	ctx := context.Background()

	_, err := EnableEncryption(ctx, ts.Session, EnableEncryptionOptions{})
	require.NoError(t, err)

	result, err := Set(ctx, ts.Session, SetOptions{
		Target:  secrets.VarRef{Environment: "staging", Name: "DB_PASSWORD"},
		Value:   "hunter2-${DB_USER}",
		Encrypt: true,
	})
	require.NoError(t, err)
	assert.True(t, result.Encrypted)

	raw, err := os.ReadFile(configs.PrimaryPath(ts.root))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")

	// Decrypted values are interpolated like any other.
	assert.Equal(t, "hunter2-app", ts.resolve(t, "prod")["DB_PASSWORD"])

	entries := ts.auditEntries(t)
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.True(t, last.Encrypted)

	data, err := os.ReadFile(ts.Audit.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.NotContains(t, ts.output.String(), "hunter2")
}

func TestDisableEncryptionRestoresPlaintext(t *testing.T) {
	ts := newProject(t, projectTOML)
	ctx := context.Background()
	before := ts.resolve(t, "prod")

	_, err := EnableEncryption(ctx, ts.Session, EnableEncryptionOptions{
		Targets: []secrets.VarRef{prodAPIKey, {Name: "REGION"}},
	})
	require.NoError(t, err)

	result, err := DisableEncryption(ctx, ts.Session, DisableEncryptionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Decrypted)
	assert.True(t, result.KeyRemoved)
	assert.NoFileExists(t, result.KeyFile)

	doc := ts.reload(t)
	assert.False(t, doc.EncryptionEnabled())
	assert.Empty(t, secrets.EncryptedRefs(doc))
	assert.Equal(t, before, ts.resolve(t, "prod"))

	_, err = DisableEncryption(ctx, ts.Session, DisableEncryptionOptions{})
	require.ErrorIs(t, err, kerrors.ErrEncryptionNotEnabled)
}

func TestDisableEncryptionWithoutKeyChangesNothing(t *testing.T) {
	ts := newProject(t, projectTOML)
	ctx := context.Background()

	_, err := EnableEncryption(ctx, ts.Session, EnableEncryptionOptions{Targets: []secrets.VarRef{prodAPIKey}})
	require.NoError(t, err)

	keyFile := filepath.Join(ts.root, configs.KeyFileName)
	require.NoError(t, os.Rename(keyFile, keyFile+".bak"))
	before, err := os.ReadFile(configs.PrimaryPath(ts.root))
	require.NoError(t, err)

	_, err = DisableEncryption(ctx, ts.Session, DisableEncryptionOptions{})
	require.ErrorIs(t, err, kerrors.ErrMissingKey)

	after, err := os.ReadFile(configs.PrimaryPath(ts.root))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestLooseKeyPermissionsWarn(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on Windows")
	}
	ts := newProject(t, projectTOML)
	ctx := context.Background()

	result, err := EnableEncryption(ctx, ts.Session, EnableEncryptionOptions{Targets: []secrets.VarRef{prodAPIKey}})
	require.NoError(t, err)
	require.NoError(t, os.Chmod(result.KeyFile, 0644))

	assert.Equal(t, "prod-secret-value", ts.resolve(t, "prod")["API_KEY"])
	assert.Contains(t, ts.output.String(), "should be 0600")
}

package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PolarWolf314/stand/internal/configs"
	kerrors "github.com/PolarWolf314/stand/internal/errors"
	logger "github.com/PolarWolf314/stand/internal/logging"
	"github.com/PolarWolf314/stand/internal/secrets"
)

func TestSetAndUnset(t *testing.T) {
	ts := newProject(t, projectTOML)
	ctx := context.Background()

	result, err := Set(ctx, ts.Session, SetOptions{Target: secrets.VarRef{Environment: "staging", Name: "FEATURE_FLAG"}, Value: "on"})
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.False(t, result.Encrypted)

	result, err = Set(ctx, ts.Session, SetOptions{Target: secrets.VarRef{Environment: "staging", Name: "DB_HOST"}, Value: "replica.internal"})
	require.NoError(t, err)
	assert.False(t, result.Created)

	staging := ts.resolve(t, "staging")
	assert.Equal(t, "on", staging["FEATURE_FLAG"])
	assert.Equal(t, "replica.internal", staging["DB_HOST"])

	doc := ts.reload(t)
	env, _ := doc.Environment("staging")
	assert.Equal(t, []string{"DB_HOST", "FEATURE_FLAG"}, env.Variables.Keys(), "replacing a value keeps its position")

	_, err = Unset(ctx, ts.Session, UnsetOptions{Target: secrets.VarRef{Environment: "staging", Name: "DB_HOST"}})
	require.NoError(t, err)
	assert.Equal(t, "localhost", ts.resolve(t, "staging")["DB_HOST"], "the inherited value shows through")

	_, err = Unset(ctx, ts.Session, UnsetOptions{Target: secrets.VarRef{Environment: "staging", Name: "DB_HOST"}})
	require.ErrorIs(t, err, kerrors.ErrVariableNotFound)

	entries := ts.auditEntries(t)
	require.Len(t, entries, 3)
	assert.Equal(t, "set", entries[0].Operation)
	assert.Equal(t, "FEATURE_FLAG", entries[0].Variable)
	assert.Equal(t, "unset", entries[2].Operation)
}

func TestSetCommon(t *testing.T) {
	ts := newProject(t, projectTOML)
	ctx := context.Background()

	_, err := Set(ctx, ts.Session, SetOptions{Target: secrets.VarRef{Name: "TEAM"}, Value: "platform"})
	require.NoError(t, err)
	assert.Equal(t, "platform", ts.resolve(t, "prod")["TEAM"])

	for _, name := range []string{"APP_NAME", "REGION", "TEAM"} {
		_, err := Unset(ctx, ts.Session, UnsetOptions{Target: secrets.VarRef{Name: name}})
		require.NoError(t, err)
	}
	assert.Nil(t, ts.reload(t).Common)
}

func TestSetRejections(t *testing.T) {
	ts := newProject(t, projectTOML)
	ctx := context.Background()
	before, err := os.ReadFile(configs.PrimaryPath(ts.root))
	require.NoError(t, err)

	_, err = Set(ctx, ts.Session, SetOptions{Target: secrets.VarRef{Environment: "dev", Name: "BAD-NAME"}, Value: "x"})
	require.ErrorIs(t, err, kerrors.ErrInvalidVariableName)

	_, err = Set(ctx, ts.Session, SetOptions{Target: secrets.VarRef{Environment: "qa", Name: "X"}, Value: "x"})
	require.ErrorIs(t, err, kerrors.ErrEnvironmentNotFound)

	_, err = Set(ctx, ts.Session, SetOptions{Target: secrets.VarRef{Environment: "dev", Name: "X"}, Value: "encrypted:looks-like-ciphertext"})
	require.Error(t, err)

	_, err = Set(ctx, ts.Session, SetOptions{Target: secrets.VarRef{Environment: "dev", Name: "X"}, Value: "x", Encrypt: true})
	require.ErrorIs(t, err, kerrors.ErrEncryptionNotEnabled)

	after, err := os.ReadFile(configs.PrimaryPath(ts.root))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Empty(t, ts.auditEntries(t))
}

func TestSetRefusesLegacyProject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, configs.LegacyDirName), 0755))
	require.NoError(t, os.WriteFile(configs.LegacyPath(root), []byte("version: \"1.0\"\nenvironments:\n  dev:\n    description: Development\n"), 0644))
	ts := newTestSession(t, root)

	_, err := Set(context.Background(), ts.Session, SetOptions{Target: secrets.VarRef{Environment: "dev", Name: "X"}, Value: "x"})
	require.ErrorIs(t, err, kerrors.ErrLegacyFormat)

	result, err := Migrate(context.Background(), ts.Session, MigrateOptions{})
	require.NoError(t, err)
	assert.DirExists(t, result.BackupPath)

	_, err = Set(context.Background(), ts.Session, SetOptions{Target: secrets.VarRef{Environment: "dev", Name: "X"}, Value: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", ts.resolve(t, "dev")["X"])
}

func TestConcurrentEncryptedSets(t *testing.T) {
	ts := newProject(t, projectTOML)
	ctx := context.Background()

	_, err := EnableEncryption(ctx, ts.Session, EnableEncryptionOptions{})
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Set(ctx, ts.Session, SetOptions{
				Target:  secrets.VarRef{Environment: "prod", Name: fmt.Sprintf("SECRET_%d", i)},
				Value:   logger.Secret("value-" + fmt.Sprint(i)),
				Encrypt: true,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	doc := ts.reload(t)
	require.NoError(t, configs.CheckDocument(doc))
	assert.Len(t, secrets.EncryptedRefs(doc), writers)

	prod := ts.resolve(t, "prod")
	for i := 0; i < writers; i++ {
		assert.Equal(t, fmt.Sprintf("value-%d", i), prod[fmt.Sprintf("SECRET_%d", i)])
	}
}

func TestSetTimesOutWhileLocked(t *testing.T) {
	ts := newProject(t, projectTOML)
	ts.Options.LockWait = 0

	lock, err := acquireForTest(ts)
	require.NoError(t, err)
	defer lock.Release()

	_, err = Set(context.Background(), ts.Session, SetOptions{Target: secrets.VarRef{Environment: "dev", Name: "X"}, Value: "x"})
	require.ErrorIs(t, err, kerrors.ErrConcurrentModification)
	assert.True(t, kerrors.IsRetryable(err))
}

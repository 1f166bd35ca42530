package configs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLegacyProject(t *testing.T) {
	assert.False(t, IsLegacyProject(""))
	assert.False(t, IsLegacyProject(t.TempDir()))

	root := writeLegacyProject(t)
	assert.True(t, IsLegacyProject(root))

	writeFile(t, PrimaryPath(root), sampleTOML)
	assert.False(t, IsLegacyProject(root))
}

func TestMigrateProject(t *testing.T) {
	root := writeLegacyProject(t)

	result, err := MigrateProject(root)
	require.NoError(t, err)

	assert.Equal(t, PrimaryPath(root), result.DocumentPath)
	assert.Equal(t, 2, result.Environments)
	assert.Equal(t, []string{
		filepath.Join(root, ".stand.dev.env"),
		filepath.Join(root, ".stand.prod.env"),
	}, result.ImportedFiles)

	assert.True(t, strings.HasPrefix(filepath.Base(result.BackupPath), ".stand-backup-"))
	backup, err := os.ReadFile(filepath.Join(result.BackupPath, LegacyFileName))
	require.NoError(t, err)
	assert.Equal(t, legacyYAML, string(backup))

	_, err = os.Stat(LegacyPath(root))
	assert.True(t, os.IsNotExist(err), "legacy config should be removed")

	doc, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, FormatPrimary, doc.Format)
	assert.Equal(t, CurrentVersion, doc.Version)
	assert.Equal(t, []string{"dev", "prod"}, doc.Order)
	host, _ := doc.Environments["prod"].Variables.Get("DB_HOST")
	assert.Equal(t, "db.internal", host.Plain())
	assert.Empty(t, Validate(doc))
}

func TestMigrateProjectRefusesWhenPrimaryExists(t *testing.T) {
	root := writeLegacyProject(t)
	writeFile(t, PrimaryPath(root), sampleTOML)

	_, err := MigrateProject(root)
	require.ErrorIs(t, err, kerrors.ErrProjectAlreadyInitialized)
}

func TestMigrateProjectWithoutLegacy(t *testing.T) {
	_, err := MigrateProject(t.TempDir())
	require.ErrorIs(t, err, kerrors.ErrFileNotFound)
}

package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
)

// MigrationResult contains information about what was migrated.
type MigrationResult struct {
	DocumentPath  string
	BackupPath    string
	Environments  int
	ImportedFiles []string
}

// IsLegacyProject reports whether root holds only a legacy document.
func IsLegacyProject(root string) bool {
	if root == "" {
		return false
	}
	if _, err := os.Stat(PrimaryPath(root)); err == nil {
		return false
	}
	_, err := os.Stat(LegacyPath(root))
	return err == nil
}

// MigrateProject converts a legacy project to the primary format. The legacy
// directory is copied to a timestamped backup, the new document is written
// atomically, and only then is the legacy config.yaml removed. Dotenv files
// it referenced are left in place.
func MigrateProject(root string) (*MigrationResult, error) {
	if root == "" {
		return nil, kerrors.ErrProjectNotInitialized
	}
	if _, err := os.Stat(PrimaryPath(root)); err == nil {
		return nil, fmt.Errorf("%w: %s already exists", kerrors.ErrProjectAlreadyInitialized, PrimaryFileName)
	}

	legacyPath := LegacyPath(root)
	data, err := os.ReadFile(legacyPath)
	if err != nil {
		return nil, readError(legacyPath, err)
	}
	doc, err := DecodeLegacy(root, legacyPath, data)
	if err != nil {
		return nil, err
	}

	result := &MigrationResult{
		DocumentPath:  PrimaryPath(root),
		Environments:  len(doc.Environments),
		ImportedFiles: legacyFiles(root, data),
	}

	backupPath, err := createBackup(root)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}
	result.BackupPath = backupPath

	doc.Format = FormatPrimary
	doc.Path = result.DocumentPath
	doc.Version = CurrentVersion
	if err := Save(doc); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", PrimaryFileName, err)
	}

	if err := os.Remove(legacyPath); err != nil {
		return nil, fmt.Errorf("migrated, but failed to remove %s: %w", legacyPath, err)
	}
	return result, nil
}

// legacyFiles lists the dotenv files a legacy document references, for reporting.
func legacyFiles(root string, data []byte) []string {
	var raw legacyDocument
	if err := decodeYAML(data, &raw); err != nil {
		return nil
	}
	var files []string
	nodes := raw.Environments.Content
	for i := 0; i+1 < len(nodes); i += 2 {
		env := nodes[i+1]
		for j := 0; j+1 < len(env.Content); j += 2 {
			if env.Content[j].Value != "files" {
				continue
			}
			var list []string
			if env.Content[j+1].Decode(&list) == nil {
				for _, f := range list {
					if !filepath.IsAbs(f) {
						f = filepath.Join(root, f)
					}
					files = append(files, f)
				}
			}
		}
	}
	return files
}

// createBackup copies the legacy directory next to itself.
func createBackup(root string) (string, error) {
	legacyDir := filepath.Join(root, LegacyDirName)
	backupDir := filepath.Join(root, LegacyDirName+"-backup-"+time.Now().Format("20060102-150405"))

	if err := copyDir(legacyDir, backupDir); err != nil {
		return "", fmt.Errorf("failed to copy directory: %w", err)
	}

	return backupDir, nil
}

// copyDir recursively copies a directory.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, srcInfo.Mode())
}

package utils

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindProjectRoot walks up from start looking for a directory that contains
// any of markers (paths relative to the directory). Returns the directory, or
// an empty string if the walk reaches the filesystem root or the parent of
// the user's home directory without a match.
func FindProjectRoot(start string, markers ...string) (string, error) {
	currentDir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	stopAt := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		stopAt = filepath.Dir(homeDir)
	}

	for {
		if stopAt != "" && currentDir == stopAt {
			return "", nil
		}

		for _, marker := range markers {
			_, err := os.Stat(filepath.Join(currentDir, marker))
			if err == nil {
				return currentDir, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("error checking for %s at %s: %w", marker, currentDir, err)
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}

// EnsureGitignoreEntry appends entry to root/.gitignore unless a line with
// exactly that content is already present. Reports whether the file changed.
func EnsureGitignoreEntry(root, entry string) (bool, error) {
	path := filepath.Join(root, ".gitignore")
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == entry {
			return false, nil
		}
	}

	var b bytes.Buffer
	b.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString(entry)
	b.WriteByte('\n')

	if err := WriteFileAtomic(path, b.Bytes(), 0644); err != nil {
		return false, err
	}
	return true, nil
}

// HasOwnerOnlyPermissions reports whether info grants no access to group or
// others. It always reports true on Windows, where mode bits are not
// meaningful.
func HasOwnerOnlyPermissions(info fs.FileInfo) bool {
	if isWindows {
		return true
	}
	return info.Mode().Perm()&0077 == 0
}

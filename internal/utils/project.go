package utils

import "path/filepath"

// GetProjectName returns the base name of the project root directory.
func GetProjectName(root string) string {
	if root == "" {
		return ""
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}

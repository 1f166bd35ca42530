//go:build !unix

package utils

// Directory entries cannot be synced outside unix; the rename is the
// durability point.
func syncDir(string) error { return nil }

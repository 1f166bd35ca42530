// Package utils provides shared helpers for the stand application.
//
// # Filesystem Utilities
//
//   - FindProjectRoot: walks up directories to find a configuration document
//   - WriteFileAtomic: temp file, fsync and rename, so writes are all or nothing
//   - AcquireLock: exclusive advisory lock with bounded retry
//   - EnsureGitignoreEntry: adds a line to .gitignore once
//
// # Terminal Utilities
//
//   - ReadSecret: reads a value without echo
//   - Confirm: yes/no prompt
//   - ReadStdin: reads a piped value
package utils

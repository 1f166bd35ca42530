// Package workflows provides high-level orchestration for stand commands.
//
// Workflows coordinate the configs, environment, secrets and audit packages
// to implement complete user-facing features. Each workflow handles a single
// command's business logic, independent of CLI concerns like flag parsing,
// spinners and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else: finding the project, loading and
// validating the document, taking the project lock, writing atomically and
// recording audit entries.
//
// # Available Workflows
//
//   - Resolve: load, validate, resolve inheritance, decrypt, interpolate
//   - Get, List, Validate: read-only views of the document
//   - Set, Unset: change one variable
//   - EnableEncryption, DisableEncryption: manage the project key pair
//   - Init: write a starter .stand.toml
//   - Migrate: convert a legacy .stand/config.yaml project
//
// # Mutations
//
// Every workflow that writes the document holds an exclusive lock on
// .stand.lock for the whole read-modify-write, works on a copy, validates the
// result and replaces the file atomically. Two invocations never interleave;
// the second waits up to Options.LockWait and then fails with
// ErrConcurrentModification.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Resolve wraps every failure in a *kerrors.StageError:
//
//	result, err := workflows.Resolve(ctx, session, opts)
//	if errors.Is(err, kerrors.ErrMissingKey) {
//	    // Explain where the private key is expected
//	}
package workflows

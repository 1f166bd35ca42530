// Package errors provides typed error values for the stand application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Document errors: ErrParse, ErrFileNotFound, ErrValidation, ErrCycleDetected
//   - Project errors: ErrProjectNotInitialized, ErrEnvironmentNotFound
//   - Interpolation errors: ErrUnterminatedPlaceholder, ErrUndefinedVariable
//   - Crypto errors: ErrMissingKey, ErrDecryptionFailed
//   - Concurrency errors: ErrConcurrentModification
//
// # Typed Errors
//
// Some failures carry context. Each typed error unwraps to its sentinel:
//
//	var cycle *kerrors.CycleError
//	if errors.As(err, &cycle) {
//	    fmt.Println(strings.Join(cycle.Chain, " -> "))
//	}
//
// ValidationError carries every violation found in a document and unwraps to
// all of them, so both errors.Is(err, kerrors.ErrValidation) and
// errors.Is(err, kerrors.ErrCycleDetected) hold for a document with a cycle.
//
// StageError tags resolution failures with the pipeline stage (load,
// validate, resolve, decrypt, interpolate).
//
// No error produced by this application contains a decrypted value.
package errors

package errors

import "errors"

// Document errors indicate the configuration document could not be read or understood.
var (
	// ErrParse indicates the document is malformed for its format.
	ErrParse = errors.New("configuration document could not be parsed")

	// ErrFileNotFound indicates no configuration document exists at the expected locations.
	ErrFileNotFound = errors.New("configuration file not found")

	// ErrPermissionDenied indicates the document exists but cannot be read or written.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrLegacyFormat indicates a mutation was attempted on a read-only legacy document.
	ErrLegacyFormat = errors.New("legacy configuration format is read-only")

	// ErrValidation indicates the document failed structural validation.
	ErrValidation = errors.New("configuration is invalid")

	// ErrCycleDetected indicates environments extend each other in a loop.
	ErrCycleDetected = errors.New("circular inheritance detected")
)

// Project state errors indicate issues with project initialization or lookup.
var (
	// ErrProjectNotInitialized indicates the project has no configuration document.
	ErrProjectNotInitialized = errors.New("project has not been initialized")

	// ErrProjectAlreadyInitialized indicates a configuration document already exists.
	ErrProjectAlreadyInitialized = errors.New("project has already been initialized")

	// ErrEnvironmentNotFound indicates the requested environment is not declared.
	ErrEnvironmentNotFound = errors.New("environment not found")

	// ErrVariableNotFound indicates the requested variable is not declared.
	ErrVariableNotFound = errors.New("variable not found")

	// ErrInvalidVariableName indicates a variable name is empty or contains illegal characters.
	ErrInvalidVariableName = errors.New("invalid variable name")
)

// Interpolation errors indicate a placeholder could not be expanded.
var (
	// ErrUnterminatedPlaceholder indicates `${` without a closing brace.
	ErrUnterminatedPlaceholder = errors.New("unterminated placeholder")

	// ErrEmptyPlaceholderName indicates a `${}` placeholder.
	ErrEmptyPlaceholderName = errors.New("empty placeholder name")

	// ErrUndefinedVariable indicates a placeholder references an unset host variable.
	ErrUndefinedVariable = errors.New("undefined variable")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrMissingKey indicates encrypted values exist but the private key is unavailable.
	ErrMissingKey = errors.New("private key not found")

	// ErrDecryptionFailed indicates a ciphertext could not be opened.
	// The message never includes any part of the value.
	ErrDecryptionFailed = errors.New("failed to decrypt value")

	// ErrEncryptionFailed indicates a value could not be sealed.
	ErrEncryptionFailed = errors.New("failed to encrypt value")

	// ErrEncryptionNotEnabled indicates the document has no encryption settings.
	ErrEncryptionNotEnabled = errors.New("encryption is not enabled for this project")

	// ErrEncryptionAlreadyEnabled indicates encryption was enabled twice.
	ErrEncryptionAlreadyEnabled = errors.New("encryption is already enabled for this project")

	// ErrInvalidPrivateKey indicates the private key is malformed or unsupported.
	ErrInvalidPrivateKey = errors.New("invalid or unsupported private key format")

	// ErrInvalidPublicKey indicates the document's public key is malformed.
	ErrInvalidPublicKey = errors.New("invalid public key format")
)

// Concurrency errors indicate contention with another invocation.
var (
	// ErrConcurrentModification indicates another process holds the document lock.
	ErrConcurrentModification = errors.New("configuration is being modified by another process")
)

// IsRetryable reports whether err is worth retrying. Only lock contention is.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// Package configs reads, validates and writes the stand configuration document.
//
// # Formats
//
// Two on-disk layouts are supported and tried in order:
//
//   - Primary: .stand.toml in the project root. Read and written.
//   - Legacy: .stand/config.yaml, whose environments reference dotenv files.
//     Read only; MigrateProject converts it to the primary format.
//
// # Document Model
//
// A Document holds a version tag, optional common variables, named
// environments and project settings. Each Environment may extend one parent.
// Variable values are either plain text, which may contain ${NAME}
// placeholders, or ciphertext stored as "encrypted:<base64>". Variables keep
// their declaration order for display; order never affects resolution.
//
// # Validation
//
// Validate returns every structural problem at once: missing version or
// descriptions, an empty environment list, an unknown default environment,
// unknown parents, inheritance cycles and empty common values.
//
// # Runtime Options
//
// Options come from flags and STAND_* environment variables. See BuildOptions.
package configs

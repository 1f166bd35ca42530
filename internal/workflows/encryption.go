package workflows

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/stand/internal/audit"
	"github.com/PolarWolf314/stand/internal/configs"
	"github.com/PolarWolf314/stand/internal/secrets"
	"github.com/PolarWolf314/stand/internal/utils"
)

// EnableEncryptionOptions configures the encryption enable workflow.
type EnableEncryptionOptions struct {
	// Targets lists values to encrypt right away. Other values stay plain;
	// nothing is encrypted unless named.
	Targets []secrets.VarRef
}

// EnableEncryptionResult contains the outcome of enabling encryption.
type EnableEncryptionResult struct {
	// ProjectPath is the root path of the project.
	ProjectPath string

	// KeyFile is where the private key was written.
	KeyFile string

	// PublicKey is the key recorded in the document.
	PublicKey string

	// Encrypted is the number of values encrypted.
	Encrypted int

	// GitignoreUpdated is true when .gitignore gained the key file entry.
	GitignoreUpdated bool
}

// EnableEncryption generates the project key pair, encrypts the named values
// and records the public key in the document.
//
// The private key is written before the document. If the document cannot be
// written, the new key file is removed again.
//
// Returns ErrEncryptionAlreadyEnabled if the document already has a key.
// Returns ErrVariableNotFound if a target does not exist.
func EnableEncryption(ctx context.Context, s *Session, opts EnableEncryptionOptions) (*EnableEncryptionResult, error) {
	result := &EnableEncryptionResult{}
	keyWritten := false

	root, doc, err := s.mutate(ctx, func(root string, doc *configs.Document) error {
		k, err := secrets.Enable(doc, opts.Targets)
		if err != nil {
			return err
		}
		defer k.Destroy()

		result.KeyFile = s.Options.KeyFilePath(root)
		if _, err := os.Stat(result.KeyFile); err == nil {
			s.Log.WarnfAlways("replacing unused private key %s", result.KeyFile)
		}
		if err := secrets.SavePrivateKey(result.KeyFile, k); err != nil {
			return err
		}
		keyWritten = true
		s.Log.Infof("wrote private key %s", result.KeyFile)
		return nil
	})
	if err != nil {
		if keyWritten {
			if rmErr := os.Remove(result.KeyFile); rmErr != nil {
				s.Log.WarnfAlways("failed to remove %s after error: %v", result.KeyFile, rmErr)
			}
		}
		return nil, err
	}

	result.ProjectPath = root
	result.PublicKey = doc.Encryption.PublicKey
	result.Encrypted = len(secrets.EncryptedRefs(doc))

	updated, err := ignoreProjectFiles(root, result.KeyFile)
	if err != nil {
		s.Log.WarnfAlways("could not update .gitignore: %v", err)
	}
	result.GitignoreUpdated = updated

	entry := audit.NewEntry("encrypt-enable")
	entry.Count = result.Encrypted
	s.record(root, entry)

	return result, nil
}

// DisableEncryptionOptions configures the encryption disable workflow.
type DisableEncryptionOptions struct{}

// DisableEncryptionResult contains the outcome of disabling encryption.
type DisableEncryptionResult struct {
	// ProjectPath is the root path of the project.
	ProjectPath string

	// Decrypted is the number of values turned back into plain text.
	Decrypted int

	// KeyFile is the private key location.
	KeyFile string

	// KeyRemoved is true when the key file was deleted.
	KeyRemoved bool
}

// DisableEncryption decrypts every stored value and removes the project key.
//
// The document is rewritten first. The key file is deleted only after the
// plain-text document is safely on disk. If any value fails to decrypt,
// nothing changes.
//
// Returns ErrEncryptionNotEnabled if the document has no key.
// Returns ErrMissingKey if the private key is unavailable.
func DisableEncryption(ctx context.Context, s *Session, opts DisableEncryptionOptions) (*DisableEncryptionResult, error) {
	result := &DisableEncryptionResult{}

	root, _, err := s.mutate(ctx, func(root string, doc *configs.Document) error {
		vault, err := secrets.NewVault(doc.Encryption, s.keySource(root))
		if err != nil {
			return err
		}
		defer vault.Destroy()

		n, err := vault.Disable(doc)
		if err != nil {
			return err
		}
		result.Decrypted = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.ProjectPath = root
	result.KeyFile = s.Options.KeyFilePath(root)
	switch err := os.Remove(result.KeyFile); {
	case err == nil:
		result.KeyRemoved = true
	case errors.Is(err, fs.ErrNotExist):
	default:
		s.Log.WarnfAlways("encryption disabled, but failed to remove %s: %v", result.KeyFile, err)
	}

	entry := audit.NewEntry("encrypt-disable")
	entry.Count = result.Decrypted
	s.record(root, entry)

	return result, nil
}

// ignoreProjectFiles adds the key file and lock file to .gitignore. A key
// file outside the project is left alone.
func ignoreProjectFiles(root, keyFile string) (bool, error) {
	entries := []string{configs.LockFileName}
	if rel, err := filepath.Rel(root, keyFile); err == nil && !strings.HasPrefix(rel, "..") {
		entries = append([]string{filepath.ToSlash(rel)}, entries...)
	}

	changed := false
	for _, entry := range entries {
		updated, err := utils.EnsureGitignoreEntry(root, entry)
		if err != nil {
			return changed, err
		}
		changed = changed || updated
	}
	return changed, nil
}

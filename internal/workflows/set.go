package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/stand/internal/audit"
	"github.com/PolarWolf314/stand/internal/configs"
	kerrors "github.com/PolarWolf314/stand/internal/errors"
	logger "github.com/PolarWolf314/stand/internal/logging"
	"github.com/PolarWolf314/stand/internal/secrets"
)

// SetOptions configures the set workflow.
type SetOptions struct {
	// Target is the variable to write. An empty environment means common.
	Target secrets.VarRef

	// Value is the new plain-text value.
	Value logger.Secret

	// Encrypt stores the value as ciphertext. Requires encryption to be
	// enabled; only the public key is used.
	Encrypt bool
}

// SetResult contains the outcome of a set operation.
type SetResult struct {
	// ProjectPath is the root path of the project.
	ProjectPath string

	// Created is true when the variable did not exist before.
	Created bool

	// Encrypted is true when the value was stored as ciphertext.
	Encrypted bool
}

// Set adds or replaces one variable.
//
// Returns ErrInvalidVariableName for names outside [A-Za-z0-9_].
// Returns ErrEnvironmentNotFound if the environment is not declared.
// Returns ErrEncryptionNotEnabled when Encrypt is set on a project without a key.
// Returns ErrLegacyFormat for projects still on the legacy layout.
// Returns ErrConcurrentModification if another invocation holds the lock.
func Set(ctx context.Context, s *Session, opts SetOptions) (*SetResult, error) {
	if !configs.IsValidVariableName(opts.Target.Name) {
		return nil, fmt.Errorf("%w: %q", kerrors.ErrInvalidVariableName, opts.Target.Name)
	}
	if !opts.Encrypt && configs.IsEncryptedString(opts.Value.Reveal()) {
		return nil, fmt.Errorf("plain values must not start with %q; use --encrypt to store a secret", configs.EncryptedPrefix)
	}

	result := &SetResult{Encrypted: opts.Encrypt}
	root, _, err := s.mutate(ctx, func(root string, doc *configs.Document) error {
		vars, err := variablesFor(doc, opts.Target, true)
		if err != nil {
			return err
		}
		_, exists := vars.Get(opts.Target.Name)
		result.Created = !exists

		if !opts.Encrypt {
			vars.Set(opts.Target.Name, configs.PlainValue(opts.Value.Reveal()))
			return nil
		}

		vault, err := secrets.NewVault(doc.Encryption, secrets.KeySource{})
		if err != nil {
			return err
		}
		c, err := vault.EncryptValue(opts.Value.Reveal())
		if err != nil {
			return err
		}
		vars.Set(opts.Target.Name, configs.EncryptedValue(c))
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.ProjectPath = root

	entry := audit.NewEntry("set")
	entry.Environment = opts.Target.Environment
	entry.Variable = opts.Target.Name
	entry.Encrypted = opts.Encrypt
	s.record(root, entry)

	return result, nil
}

// UnsetOptions configures the unset workflow.
type UnsetOptions struct {
	// Target is the variable to remove. An empty environment means common.
	Target secrets.VarRef
}

// UnsetResult contains the outcome of an unset operation.
type UnsetResult struct {
	// ProjectPath is the root path of the project.
	ProjectPath string

	// WasEncrypted is true when the removed value was ciphertext.
	WasEncrypted bool
}

// Unset removes one variable.
//
// Returns ErrVariableNotFound if the variable is not declared at that level;
// inherited variables must be removed where they are defined.
func Unset(ctx context.Context, s *Session, opts UnsetOptions) (*UnsetResult, error) {
	result := &UnsetResult{}
	root, _, err := s.mutate(ctx, func(root string, doc *configs.Document) error {
		vars, err := variablesFor(doc, opts.Target, false)
		if err != nil {
			return err
		}
		stored, ok := vars.Get(opts.Target.Name)
		if !ok {
			return fmt.Errorf("%w: %s", kerrors.ErrVariableNotFound, opts.Target)
		}
		result.WasEncrypted = stored.IsEncrypted()
		vars.Delete(opts.Target.Name)
		if opts.Target.Environment == "" && doc.Common.Len() == 0 {
			doc.Common = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.ProjectPath = root

	entry := audit.NewEntry("unset")
	entry.Environment = opts.Target.Environment
	entry.Variable = opts.Target.Name
	s.record(root, entry)

	return result, nil
}

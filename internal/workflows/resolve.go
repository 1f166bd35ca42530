package workflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/stand/internal/configs"
	"github.com/PolarWolf314/stand/internal/environment"
	kerrors "github.com/PolarWolf314/stand/internal/errors"
	"github.com/PolarWolf314/stand/internal/secrets"
)

// ResolveOptions configures the resolve workflow.
type ResolveOptions struct {
	// Environment to resolve. If empty, the document's default_environment
	// is used.
	Environment string

	// Raw stops after inheritance: values are returned as stored, with
	// ciphertext left closed and placeholders unexpanded. No key is needed.
	Raw bool
}

// ResolveResult contains the outcome of a resolve operation.
type ResolveResult struct {
	// ProjectPath is the root path of the project.
	ProjectPath string

	// Document is the validated document the environment came from.
	Document *configs.Document

	// Environment holds the final variables with their provenance.
	Environment *environment.Resolved
}

// Resolve produces the final variables of one environment.
//
// The pipeline is load, validate, resolve inheritance, decrypt, interpolate.
// A failure at any stage returns a *kerrors.StageError naming the stage and
// no variables at all. The private key is only loaded when the environment
// holds at least one encrypted value.
func Resolve(ctx context.Context, s *Session, opts ResolveOptions) (*ResolveResult, error) {
	root, err := s.ProjectRoot()
	if err != nil {
		return nil, &kerrors.StageError{Stage: kerrors.StageLoad, Err: err}
	}

	doc, err := s.load(root)
	if err != nil {
		return nil, &kerrors.StageError{Stage: kerrors.StageLoad, Err: err}
	}
	s.Log.Debugf("loaded %s (%s format)", doc.Path, doc.Format)

	if err := configs.CheckDocument(doc); err != nil {
		return nil, &kerrors.StageError{Stage: kerrors.StageValidate, Err: err}
	}

	target := opts.Environment
	if target == "" {
		target = doc.Settings.DefaultEnvironment
	}
	if target == "" {
		err := fmt.Errorf("%w: no environment given and no default_environment set (available: %s)", kerrors.ErrEnvironmentNotFound, joinNames(doc.EnvironmentNames()))
		return nil, &kerrors.StageError{Stage: kerrors.StageResolve, Err: err}
	}

	resolved, err := environment.Resolve(doc, target)
	if err != nil {
		return nil, &kerrors.StageError{Stage: kerrors.StageResolve, Err: err}
	}
	s.Log.Debugf("resolved '%s' through %s", target, strings.Join(resolved.Chain, " -> "))

	result := &ResolveResult{ProjectPath: root, Document: doc, Environment: resolved}
	if opts.Raw {
		return result, nil
	}

	if resolved.HasEncrypted() {
		if err := decrypt(s, root, doc, resolved); err != nil {
			return nil, &kerrors.StageError{Stage: kerrors.StageDecrypt, Err: err}
		}
	}

	if err := resolved.Interpolate(s.lookup()); err != nil {
		return nil, &kerrors.StageError{Stage: kerrors.StageInterpolate, Err: err}
	}

	return result, nil
}

func decrypt(s *Session, root string, doc *configs.Document, resolved *environment.Resolved) error {
	if !doc.EncryptionEnabled() {
		return fmt.Errorf("%w: values are encrypted but the document has no [encryption] table", kerrors.ErrEncryptionNotEnabled)
	}
	vault, err := secrets.NewVault(doc.Encryption, s.keySource(root))
	if err != nil {
		return err
	}
	defer vault.Destroy()

	s.Log.Debugf("decrypting values for '%s'", resolved.Environment)
	return resolved.Decrypt(vault)
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func variableNotFound(name, env string) error {
	return fmt.Errorf("%w: '%s' in environment '%s'", kerrors.ErrVariableNotFound, name, env)
}

package workflows

import (
	"context"

	"github.com/PolarWolf314/stand/internal/configs"
	kerrors "github.com/PolarWolf314/stand/internal/errors"
	"github.com/PolarWolf314/stand/internal/secrets"
)

// EnvironmentSummary describes one environment for listing.
type EnvironmentSummary struct {
	Name                 string
	Description          string
	Extends              string
	Color                string
	RequiresConfirmation bool
	Variables            int
	Encrypted            int
	IsDefault            bool
}

// ListResult contains the outcome of a list operation.
type ListResult struct {
	// ProjectPath is the root path of the project.
	ProjectPath string

	// Format is the on-disk layout the document was read from.
	Format configs.Format

	// EncryptionEnabled is true when the project has a key pair.
	EncryptionEnabled bool

	// Environments in declaration order.
	Environments []EnvironmentSummary
}

// List summarises the project's environments. It does not validate the
// document beyond parsing and never needs the private key. Colour and
// confirmation are the effective values after inheritance.
func List(ctx context.Context, s *Session) (*ListResult, error) {
	root, err := s.ProjectRoot()
	if err != nil {
		return nil, err
	}
	doc, err := s.load(root)
	if err != nil {
		return nil, err
	}

	encrypted := make(map[string]int)
	for _, ref := range secrets.EncryptedRefs(doc) {
		encrypted[ref.Environment]++
	}

	result := &ListResult{
		ProjectPath:       root,
		Format:            doc.Format,
		EncryptionEnabled: doc.EncryptionEnabled(),
	}
	for _, env := range doc.OrderedEnvironments() {
		summary := EnvironmentSummary{
			Name:        env.Name,
			Description: env.Description,
			Extends:     env.Extends,
			Variables:   env.Variables.Len(),
			Encrypted:   encrypted[env.Name],
			IsDefault:   env.Name == doc.Settings.DefaultEnvironment,
		}
		summary.Color, summary.RequiresConfirmation = effectiveDisplay(doc, env)
		result.Environments = append(result.Environments, summary)
	}
	return result, nil
}

// effectiveDisplay walks up the parents for colour and confirmation. It
// stops at a repeated name so a cyclic document still lists.
func effectiveDisplay(doc *configs.Document, env *configs.Environment) (string, bool) {
	var color *string
	var confirm *bool
	seen := make(map[string]bool)
	for cur := env; cur != nil && !seen[cur.Name]; cur = doc.Environments[cur.Extends] {
		seen[cur.Name] = true
		if color == nil {
			color = cur.Color
		}
		if confirm == nil {
			confirm = cur.RequiresConfirmation
		}
	}
	c, r := "", false
	if color != nil {
		c = *color
	}
	if confirm != nil {
		r = *confirm
	}
	return c, r
}

// ValidateResult contains the outcome of a validate operation.
type ValidateResult struct {
	// ProjectPath is the root path of the project.
	ProjectPath string

	// DocumentPath is the file that was checked.
	DocumentPath string

	// Problems lists every structural problem found. Empty means valid.
	Problems []error
}

// Validate loads the document and reports every structural problem at once.
// Problems are returned in the result, not as the error; the error is only
// set when the document cannot be loaded at all.
func Validate(ctx context.Context, s *Session) (*ValidateResult, error) {
	root, err := s.ProjectRoot()
	if err != nil {
		return nil, err
	}
	doc, err := s.load(root)
	if err != nil {
		return nil, err
	}
	return &ValidateResult{
		ProjectPath:  root,
		DocumentPath: doc.Path,
		Problems:     configs.Validate(doc),
	}, nil
}

// GetOptions configures the get workflow.
type GetOptions struct {
	Environment string
	Name        string
}

// Get resolves an environment and returns a single final value.
//
// Returns ErrVariableNotFound if the environment does not define the name,
// directly or through inheritance.
func Get(ctx context.Context, s *Session, opts GetOptions) (string, error) {
	result, err := Resolve(ctx, s, ResolveOptions{Environment: opts.Environment})
	if err != nil {
		return "", err
	}
	entry, ok := result.Environment.Get(opts.Name)
	if !ok {
		return "", &kerrors.StageError{Stage: kerrors.StageResolve, Err: variableNotFound(opts.Name, result.Environment.Environment)}
	}
	return entry.Value, nil
}

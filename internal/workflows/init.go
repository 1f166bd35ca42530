package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/stand/internal/audit"
	"github.com/PolarWolf314/stand/internal/configs"
	kerrors "github.com/PolarWolf314/stand/internal/errors"
	"github.com/PolarWolf314/stand/internal/utils"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// Force overwrites an existing .stand.toml.
	Force bool
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	// ProjectPath is the root path of the project.
	ProjectPath string

	// DocumentPath is the file that was written.
	DocumentPath string

	// Environments lists the environments in the new document.
	Environments []string

	// Overwritten is true when an existing document was replaced.
	Overwritten bool
}

// Init writes a starter .stand.toml in the project directory.
//
// Returns ErrProjectAlreadyInitialized if a document exists and Force is not
// set, or if the directory holds a legacy project, which should be migrated
// instead.
func Init(ctx context.Context, s *Session, opts InitOptions) (*InitResult, error) {
	root, err := filepath.Abs(s.Options.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory: %w", err)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating project directory: %w", err)
	}

	lock, err := utils.AcquireLock(ctx, s.lockPath(root), s.Options.LockWait)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	result := &InitResult{ProjectPath: root, DocumentPath: configs.PrimaryPath(root)}
	if _, err := os.Stat(result.DocumentPath); err == nil {
		if !opts.Force {
			return nil, fmt.Errorf("%w: use 'stand init --force' to overwrite %s", kerrors.ErrProjectAlreadyInitialized, configs.PrimaryFileName)
		}
		result.Overwritten = true
	} else if configs.IsLegacyProject(root) {
		return nil, fmt.Errorf("%w: found %s, run 'stand migrate' instead", kerrors.ErrProjectAlreadyInitialized, configs.LegacyPath(root))
	}

	doc := starterDocument(utils.GetProjectName(root))
	doc.Path = result.DocumentPath
	if err := configs.CheckDocument(doc); err != nil {
		return nil, err
	}
	if result.Overwritten {
		s.Log.WarnfAlways("overwriting %s", result.DocumentPath)
	}
	if err := configs.Save(doc); err != nil {
		return nil, fmt.Errorf("saving %s: %w", configs.PrimaryFileName, err)
	}
	result.Environments = doc.Order

	if _, err := utils.EnsureGitignoreEntry(root, configs.LockFileName); err != nil {
		s.Log.Warnf("could not update .gitignore: %v", err)
	}

	s.record(root, audit.NewEntry("init"))
	return result, nil
}

// starterDocument is the template written by init: a shared section and
// three environments, with production guarded by a confirmation prompt.
func starterDocument(project string) *configs.Document {
	doc := configs.NewDocument()
	doc.Settings.DefaultEnvironment = "dev"

	doc.Common = configs.NewVariables()
	doc.Common.Set("APP_NAME", configs.PlainValue(project))

	dev := &configs.Environment{
		Name:        "dev",
		Description: "Development environment",
		Color:       ptr("green"),
		Variables:   configs.NewVariables(),
	}
	dev.Variables.Set("LOG_LEVEL", configs.PlainValue("debug"))

	staging := &configs.Environment{
		Name:        "staging",
		Description: "Staging environment",
		Extends:     "dev",
		Color:       ptr("yellow"),
		Variables:   configs.NewVariables(),
	}
	staging.Variables.Set("LOG_LEVEL", configs.PlainValue("info"))

	prod := &configs.Environment{
		Name:                 "prod",
		Description:          "Production environment",
		Color:                ptr("red"),
		RequiresConfirmation: ptr(true),
		Variables:            configs.NewVariables(),
	}
	prod.Variables.Set("LOG_LEVEL", configs.PlainValue("warn"))

	doc.AddEnvironment(dev)
	doc.AddEnvironment(staging)
	doc.AddEnvironment(prod)
	return doc
}

func ptr[T any](v T) *T { return &v }

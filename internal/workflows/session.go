package workflows

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/PolarWolf314/stand/internal/audit"
	"github.com/PolarWolf314/stand/internal/configs"
	"github.com/PolarWolf314/stand/internal/environment"
	kerrors "github.com/PolarWolf314/stand/internal/errors"
	logger "github.com/PolarWolf314/stand/internal/logging"
	"github.com/PolarWolf314/stand/internal/secrets"
	"github.com/PolarWolf314/stand/internal/utils"
)

// Session carries what every workflow needs from one invocation.
type Session struct {
	Options *configs.Options
	Log     logger.Logger
	Audit   *audit.Trail

	// Lookup serves ${NAME} placeholders. Nil means the process environment.
	Lookup environment.Lookup
}

// NewSession builds a session from resolved runtime options.
func NewSession(opts *configs.Options, log logger.Logger) *Session {
	trail := audit.Discard
	if !opts.NoAudit && opts.AuditLog != "" {
		trail = audit.New(opts.AuditLog)
	}
	return &Session{Options: opts, Log: log, Audit: trail}
}

func (s *Session) lookup() environment.Lookup {
	if s.Lookup != nil {
		return s.Lookup
	}
	return environment.OSLookup
}

// ProjectRoot finds the nearest directory at or above the project directory
// holding a configuration document.
func (s *Session) ProjectRoot() (string, error) {
	root, err := utils.FindProjectRoot(s.Options.ProjectDir,
		configs.PrimaryFileName,
		filepath.Join(configs.LegacyDirName, configs.LegacyFileName),
	)
	if err != nil {
		return "", err
	}
	if root == "" {
		return "", fmt.Errorf("%w: no %s found in %s or any parent directory", kerrors.ErrProjectNotInitialized, configs.PrimaryFileName, s.Options.ProjectDir)
	}
	return root, nil
}

func (s *Session) load(root string) (*configs.Document, error) {
	return configs.LoadWithOptions(root, configs.LoadOptions{
		OnDeprecation: func(msg string) { s.Log.WarnfAlways("%s", msg) },
	})
}

func (s *Session) keySource(root string) secrets.KeySource {
	return secrets.KeySource{
		Path:   s.Options.KeyFilePath(root),
		Inline: s.Options.PrivateKey,
		Warn:   s.Log.WarnfAlways,
	}
}

func (s *Session) lockPath(root string) string {
	return filepath.Join(root, configs.LockFileName)
}

// record appends to the audit trail. A failure is only a warning.
func (s *Session) record(root string, entry audit.Entry) {
	entry.Project = utils.GetProjectName(root)
	if err := s.Audit.Log(entry); err != nil {
		s.Log.Warnf("failed to write audit log %s: %v", s.Audit.Path(), err)
	}
}

// mutate runs fn on a fresh copy of the project document while holding the
// project lock, validates the result and writes it atomically. Nothing is
// written if fn or validation fails.
func (s *Session) mutate(ctx context.Context, fn func(root string, doc *configs.Document) error) (string, *configs.Document, error) {
	root, err := s.ProjectRoot()
	if err != nil {
		return "", nil, err
	}

	lock, err := utils.AcquireLock(ctx, s.lockPath(root), s.Options.LockWait)
	if err != nil {
		return "", nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			s.Log.Warnf("failed to release %s: %v", s.lockPath(root), err)
		}
	}()

	current, err := s.load(root)
	if err != nil {
		return "", nil, err
	}
	if current.Format == configs.FormatLegacy {
		return "", nil, fmt.Errorf("%w: run 'stand migrate' first", kerrors.ErrLegacyFormat)
	}

	doc := current.Clone()
	if err := fn(root, doc); err != nil {
		return "", nil, err
	}
	if err := configs.CheckDocument(doc); err != nil {
		return "", nil, err
	}
	if err := configs.Save(doc); err != nil {
		return "", nil, fmt.Errorf("saving %s: %w", doc.Path, err)
	}
	s.Log.Debugf("wrote %s", doc.Path)
	return root, doc, nil
}

// variablesFor returns the mapping a reference points into, creating the
// common section on demand.
func variablesFor(doc *configs.Document, ref secrets.VarRef, create bool) (*configs.Variables, error) {
	if ref.Environment == "" {
		if doc.Common == nil {
			if !create {
				return nil, fmt.Errorf("%w: %s", kerrors.ErrVariableNotFound, ref)
			}
			doc.Common = configs.NewVariables()
		}
		return doc.Common, nil
	}
	env, ok := doc.Environment(ref.Environment)
	if !ok {
		return nil, fmt.Errorf("%w: '%s' (available: %s)", kerrors.ErrEnvironmentNotFound, ref.Environment, joinNames(doc.EnvironmentNames()))
	}
	return env.Variables, nil
}

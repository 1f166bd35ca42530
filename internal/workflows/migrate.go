package workflows

import (
	"context"

	"github.com/PolarWolf314/stand/internal/audit"
	"github.com/PolarWolf314/stand/internal/configs"
	"github.com/PolarWolf314/stand/internal/utils"
)

// MigrateOptions configures the migrate workflow.
type MigrateOptions struct{}

// Migrate converts a legacy .stand/config.yaml project to .stand.toml. The
// legacy directory is backed up first; referenced dotenv files stay in place.
//
// Returns ErrProjectAlreadyInitialized if .stand.toml already exists.
func Migrate(ctx context.Context, s *Session, opts MigrateOptions) (*configs.MigrationResult, error) {
	root, err := s.ProjectRoot()
	if err != nil {
		return nil, err
	}

	lock, err := utils.AcquireLock(ctx, s.lockPath(root), s.Options.LockWait)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	result, err := configs.MigrateProject(root)
	if err != nil {
		return nil, err
	}
	s.Log.Infof("backed up legacy configuration to %s", result.BackupPath)

	entry := audit.NewEntry("migrate")
	entry.Count = result.Environments
	s.record(root, entry)

	return result, nil
}

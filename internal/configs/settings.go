package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	logger "github.com/PolarWolf314/stand/internal/logging"
)

// DefaultLockWait bounds how long a mutation waits for another invocation.
// It must match the envDefault tag on Options.LockWait.
const DefaultLockWait = 2 * time.Second

// Options are per-invocation runtime settings. They come from command-line
// flags and STAND_* environment variables; flags win.
//
// LockWait has no flag and takes its default from the environment layer, so
// STAND_LOCK_WAIT=0 means fail at once when another invocation holds the lock.
type Options struct {
	ProjectDir string        `env:"STAND_PROJECT_DIR"`
	KeyFile    string        `env:"STAND_KEY_FILE"`
	PrivateKey logger.Secret `env:"STAND_PRIVATE_KEY"`
	LockWait   time.Duration `env:"STAND_LOCK_WAIT" envDefault:"2s"`
	AuditLog   string        `env:"STAND_AUDIT_LOG"`
	NoAudit    bool          `env:"STAND_NO_AUDIT"`
}

// BuildOptions merges flag values over the environment over defaults.
func BuildOptions(flags Options) (*Options, error) {
	fromEnv := Options{}
	if err := env.Parse(&fromEnv); err != nil {
		return nil, fmt.Errorf("error reading STAND_* environment variables: %w", err)
	}

	out := new(Options)
	for _, layer := range []Options{flags, fromEnv, defaultOptions()} {
		if err := mergo.Merge(out, layer); err != nil {
			return nil, fmt.Errorf("error merging options: %w", err)
		}
	}
	return out, nil
}

func defaultOptions() Options {
	dir := ""
	if wd, err := os.Getwd(); err == nil {
		dir = wd
	}
	return Options{
		ProjectDir: dir,
		AuditLog:   DefaultAuditLogPath(),
	}
}

// KeyFilePath returns the private key location for the project at root.
func (o Options) KeyFilePath(root string) string {
	if o.KeyFile != "" {
		return o.KeyFile
	}
	return filepath.Join(root, KeyFileName)
}

// DefaultAuditLogPath is $XDG_DATA_HOME/stand/audit.jsonl, falling back to
// ~/.local/share when XDG_DATA_HOME is unset.
func DefaultAuditLogPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "stand", "audit.jsonl")
}

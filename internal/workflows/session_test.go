package workflows

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PolarWolf314/stand/internal/audit"
	"github.com/PolarWolf314/stand/internal/configs"
	"github.com/PolarWolf314/stand/internal/environment"
	logger "github.com/PolarWolf314/stand/internal/logging"
	"github.com/PolarWolf314/stand/internal/utils"
)

const projectTOML = `version = "2.0"

[settings]
default_environment = "dev"

[common]
APP_NAME = "demo"
REGION = "eu-west-1"

[environments.dev]
description = "Development"
color = "green"
DB_HOST = "localhost"
DATABASE_URL = "postgres://${DB_USER}@localhost/app"

[environments.staging]
description = "Staging"
extends = "dev"
DB_HOST = "staging.internal"

[environments.prod]
description = "Production"
extends = "staging"
requires_confirmation = true
DB_HOST = "prod.internal"
API_KEY = "prod-secret-value"
`

// lockedBuffer is safe for the concurrent writes of parallel workflows.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testSession struct {
	*Session
	root   string
	output *lockedBuffer
}

func newTestSession(t *testing.T, root string) *testSession {
	t.Helper()
	out := &lockedBuffer{}
	opts := &configs.Options{
		ProjectDir: root,
		LockWait:   5 * time.Second,
		AuditLog:   filepath.Join(t.TempDir(), "audit.jsonl"),
	}
	s := NewSession(opts, logger.Logger{Verbose: true, Debug: true, Out: out, Err: out})
	s.Lookup = environment.MapLookup{"DB_USER": "app"}
	return &testSession{Session: s, root: root, output: out}
}

func newProject(t *testing.T, content string) *testSession {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(configs.PrimaryPath(root), []byte(content), 0600))
	return newTestSession(t, root)
}

func (ts *testSession) reload(t *testing.T) *configs.Document {
	t.Helper()
	doc, err := configs.Load(ts.root)
	require.NoError(t, err)
	return doc
}

func (ts *testSession) auditEntries(t *testing.T) []audit.Entry {
	t.Helper()
	entries, err := ts.Audit.ReadEntries()
	require.NoError(t, err)
	return entries
}

func (ts *testSession) resolve(t *testing.T, env string) map[string]string {
	t.Helper()
	result, err := Resolve(context.Background(), ts.Session, ResolveOptions{Environment: env})
	require.NoError(t, err)
	return result.Environment.Map()
}

func acquireForTest(ts *testSession) (*utils.FileLock, error) {
	return utils.AcquireLock(context.Background(), ts.lockPath(ts.root), 0)
}

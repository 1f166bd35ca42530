package utils

import (
	"context"
	"fmt"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
)

const (
	lockInitialBackoff = 10 * time.Millisecond
	lockMaxBackoff     = 200 * time.Millisecond
)

// FileLock is an exclusive advisory lock held on a file. Other processes
// using AcquireLock on the same path wait; processes that ignore the lock
// are not stopped.
type FileLock struct {
	f *os.File
}

// AcquireLock takes an exclusive lock on path, creating the file if needed.
// It retries with backoff until wait has elapsed and then returns
// kerrors.ErrConcurrentModification. A cancelled ctx stops the wait early.
func AcquireLock(ctx context.Context, path string, wait time.Duration) (*FileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(wait)
	backoff := lockInitialBackoff
	for {
		ok, err := tryLock(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		if ok {
			return &FileLock{f: f}, nil
		}
		if !time.Now().Before(deadline) {
			f.Close()
			return nil, fmt.Errorf("%w: %s is locked", kerrors.ErrConcurrentModification, path)
		}

		select {
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, lockMaxBackoff)
	}
}

// Release drops the lock. The lock file is left in place; removing it would
// let a waiter lock an unlinked file.
func (l *FileLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}

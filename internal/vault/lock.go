package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/secrets"

	"github.com/gofrs/flock"
)

// LockSuffix is appended to an artifact path to name its lock file.
const LockSuffix = secrets.LockExtension

const lockRetryDelay = 50 * time.Millisecond

// LockPath returns the lock file guarding artifactPath.
func LockPath(artifactPath string) string {
	return artifactPath + LockSuffix
}

// acquire takes the exclusive lock for artifactPath according to the
// vault's policy. The lock file is left in place after release; removing it
// would race with a waiter that already opened it.
func (v *Vault) acquire(ctx context.Context, artifactPath string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(artifactPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: creating directory for %s: %v", kerrors.ErrPersistence, artifactPath, err)
	}

	lock := flock.New(LockPath(artifactPath))

	var (
		locked bool
		err    error
	)
	switch v.opts.LockPolicy {
	case LockBlock:
		if v.opts.LockTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, v.opts.LockTimeout)
			defer cancel()
		}
		v.log.Debugf("Waiting for lock on %s", artifactPath)
		locked, err = lock.TryLockContext(ctx, lockRetryDelay)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timed out after %s waiting for %s", kerrors.ErrRotationConflict, v.opts.LockTimeout, artifactPath)
		}
	default:
		locked, err = lock.TryLock()
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: locking %s: %v", kerrors.ErrPersistence, artifactPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s is being modified by another process", kerrors.ErrRotationConflict, artifactPath)
	}

	v.log.Debugf("Acquired lock %s", lock.Path())
	return lock, nil
}

// Lock takes the exclusive lock guarding path under the vault's policy and
// returns the function that releases it. Workflows spanning several
// artifacts use it to serialize on a shared file such as the key.
func (v *Vault) Lock(ctx context.Context, path string) (func(), error) {
	lock, err := v.acquire(ctx, path)
	if err != nil {
		return nil, err
	}
	return func() { v.release(lock) }, nil
}

func (v *Vault) release(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		v.log.Warnf("Failed to release lock %s: %v", lock.Path(), err)
		return
	}
	v.log.Debugf("Released lock %s", lock.Path())
}

// isLocked reports whether another holder has the artifact locked.
func isLocked(artifactPath string) bool {
	lockPath := LockPath(artifactPath)
	if _, err := os.Stat(lockPath); err != nil {
		return false
	}
	fl := flock.New(lockPath)
	ok, err := fl.TryRLock()
	if err != nil {
		return false
	}
	if ok {
		_ = fl.Unlock()
		return false
	}
	return true
}

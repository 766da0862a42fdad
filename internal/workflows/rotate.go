package workflows

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/PolarWolf314/envault/internal/audit"
	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/secrets"
	"github.com/PolarWolf314/envault/internal/utils"
	"github.com/PolarWolf314/envault/internal/vault"
)

// PendingKeySuffix names the new key while a rotation is in progress.
const PendingKeySuffix = ".next"

// RotateOptions configures the rotate workflow.
type RotateOptions struct {
	CommonOptions

	// FilePatterns specifies artifacts to rotate. If empty, every artifact
	// in the project is rotated.
	FilePatterns []string

	// OldKeyPolicy overrides the project's old_key_policy when set.
	OldKeyPolicy vault.OldKeyPolicy

	// Now stamps the retired key's file name. Defaults to time.Now.
	Now func() time.Time
}

// RotateResult contains the outcome of a rotate operation.
type RotateResult struct {
	// KeyPath is the key file, now holding the new key.
	KeyPath string

	// RetiredKeyPath is where the old key was kept, empty when it was deleted.
	RetiredKeyPath string

	// Artifacts lists the artifacts re-encrypted under the new key.
	Artifacts []string

	// Cipher is the algorithm the artifacts were sealed with.
	Cipher string
}

// Rotate replaces the project key and re-encrypts every artifact under it.
//
// The workflow:
//  1. Loads the current key from its file
//  2. Generates a new key and stores it next to the old one as "<key>.next"
//  3. Rotates each artifact from the old key to the new key
//  4. If any artifact fails, rotates the finished ones back and stops
//  5. Retires the old key according to the old key policy
//  6. Atomically replaces the key file with the new key
//
// Until step 6 the key file still holds the old key, and every artifact is
// readable under either the key file or "<key>.next". The whole run holds
// "<key>.lock". A "<key>.next" left by an earlier failed run may be the only
// key some artifacts open under, so Rotate refuses to start while it exists.
//
// Returns ErrInvalidArguments if the key did not come from a file.
// Returns ErrRotationConflict if another rotation holds the key lock, a
// pending key is left over, or another operation holds an artifact lock.
// Returns ErrAuthentication if an artifact is not sealed under the current key.
func Rotate(ctx context.Context, opts RotateOptions) (*RotateResult, error) {
	p, err := loadProject(opts.KeyPath != "")
	if err != nil {
		return nil, err
	}

	if len(opts.KeyData) > 0 {
		return nil, fmt.Errorf("%w: rotate-key needs a key file, not a key from stdin", kerrors.ErrInvalidArguments)
	}
	if opts.KeyPath == "" && os.Getenv(KeyEnvVar) != "" {
		return nil, fmt.Errorf("%w: rotate-key needs a key file; unset %s or pass --key", kerrors.ErrInvalidArguments, KeyEnvVar)
	}

	policy := opts.OldKeyPolicy
	if policy == "" {
		if policy, err = p.config.OldKeyPolicy(); err != nil {
			return nil, err
		}
	}

	artifacts, err := p.resolveArtifacts(opts.FilePatterns)
	if err != nil {
		return nil, err
	}

	oldKey, _, keyPath, err := p.loadKey(opts.CommonOptions)
	if err != nil {
		return nil, err
	}

	v, alg, err := p.newVault(opts.CommonOptions, false)
	if err != nil {
		return nil, err
	}

	unlock, err := v.Lock(ctx, keyPath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	pendingPath := keyPath + PendingKeySuffix
	pending, err := utils.FileExists(pendingPath)
	if err != nil {
		return nil, fmt.Errorf("%w: checking %s: %v", kerrors.ErrPersistence, pendingPath, err)
	}
	if pending {
		return nil, fmt.Errorf("%w: %s is left from an interrupted rotation and some artifacts may only open under it; "+
			"decrypt them with --key %s, then move it aside and rotate again", kerrors.ErrRotationConflict, pendingPath, pendingPath)
	}

	// Re-read under the lock; a rotation that finished while we waited has
	// replaced the key.
	if oldKey, err = secrets.NewFileKeyManager().Load(keyPath); err != nil {
		return nil, err
	}

	km := secrets.NewFileKeyManager()
	newKey, err := km.Generate()
	if err != nil {
		return nil, err
	}

	if err := km.Store(newKey, pendingPath); err != nil {
		return nil, err
	}
	opts.Logger.Debugf("Stored pending key at %s", pendingPath)

	var rotated []string
	for _, a := range artifacts {
		if err := v.Rotate(ctx, a, oldKey, newKey); err != nil {
			if rollback(ctx, v, rotated, newKey, oldKey, opts.CommonOptions) {
				_ = os.Remove(pendingPath)
			} else {
				opts.Logger.WarnfAlways("Kept %s; some artifacts are still sealed under it", pendingPath)
			}
			return nil, fmt.Errorf("rotating %s: %w", a, err)
		}
		rotated = append(rotated, a)
	}

	result := &RotateResult{
		KeyPath:   keyPath,
		Artifacts: rotated,
		Cipher:    alg.String(),
	}

	if policy == vault.RetainOldKey {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		result.RetiredKeyPath = fmt.Sprintf("%s.%d.old", keyPath, now().Unix())
		if err := km.Store(oldKey, result.RetiredKeyPath); err != nil {
			return nil, fmt.Errorf("retiring old key (artifacts now use %s): %w", pendingPath, err)
		}
		opts.Logger.Infof("Retained old key at %s", result.RetiredKeyPath)
	}

	if err := km.Store(newKey, keyPath); err != nil {
		return nil, fmt.Errorf("replacing key (artifacts now use %s): %w", pendingPath, err)
	}
	if err := os.Remove(pendingPath); err != nil {
		opts.Logger.Warnf("Failed to remove pending key %s: %v", pendingPath, err)
	}

	auditEntry := audit.LogWithUser("rotate-key")
	auditEntry.Files = rotated
	auditEntry.KeyPath = keyPath
	auditEntry.Cipher = result.Cipher
	auditEntry.Details = map[string]string{"old_key_policy": string(policy)}
	if result.RetiredKeyPath != "" {
		auditEntry.Details["retired_key"] = result.RetiredKeyPath
	}
	audit.Log(auditEntry)

	return result, nil
}

// rollback re-seals already rotated artifacts under the old key. Failures
// are reported but do not stop the remaining rollbacks. It reports whether
// every artifact was restored.
func rollback(ctx context.Context, v *vault.Vault, rotated []string, newKey, oldKey secrets.Key, opts CommonOptions) bool {
	// A canceled run still has to undo its work.
	ctx = context.WithoutCancel(ctx)
	ok := true
	for _, a := range rotated {
		if err := v.Rotate(ctx, a, newKey, oldKey); err != nil {
			opts.Logger.Errorf("Failed to roll back %s; it is sealed under the pending key: %v", a, err)
			ok = false
			continue
		}
		opts.Logger.Infof("Rolled back %s", a)
	}
	return ok
}

package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/envault/internal/audit"
	kerrors "github.com/PolarWolf314/envault/internal/errors"
	logger "github.com/PolarWolf314/envault/internal/logging"
	"github.com/PolarWolf314/envault/internal/secrets"
	"github.com/PolarWolf314/envault/internal/utils"
)

// KeygenOptions configures the keygen workflow.
type KeygenOptions struct {
	// KeyPath is where the key is written. Empty uses the project key path.
	KeyPath string

	// Force overwrites an existing key file.
	Force bool

	// Print returns the base64 form of the key for CI secrets.
	Print bool

	Logger logger.Logger
}

// KeygenResult contains the outcome of a keygen operation.
type KeygenResult struct {
	// KeyPath is the key file that was written.
	KeyPath string

	// Overwrote is true when an existing key file was replaced.
	Overwrote bool

	// Encoded is the base64 key, set only when Print was requested.
	Encoded string
}

// Keygen generates a new key and stores it with owner-only permissions.
//
// Replacing a key makes every artifact sealed under it unreadable, so an
// existing file is only overwritten with Force. Use Rotate to change the
// key of a project that already has artifacts.
//
// Returns ErrFileExists if the key file exists and Force is not set.
// Returns ErrProjectNotInitialized if KeyPath is empty outside a project.
// Returns ErrKeyGeneration or ErrPersistence on failure.
func Keygen(ctx context.Context, opts KeygenOptions) (*KeygenResult, error) {
	p, err := loadProject(opts.KeyPath != "")
	if err != nil {
		return nil, err
	}

	keyPath, err := p.keyPath(opts.KeyPath)
	if err != nil {
		return nil, err
	}

	exists, err := utils.FileExists(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: checking key %s: %v", kerrors.ErrPersistence, keyPath, err)
	}
	if exists && !opts.Force {
		return nil, fmt.Errorf("%w: %s (use --force to replace it)", kerrors.ErrFileExists, keyPath)
	}

	km := secrets.NewFileKeyManager()
	key, err := km.Generate()
	if err != nil {
		return nil, err
	}
	if err := km.Store(key, keyPath); err != nil {
		return nil, err
	}
	opts.Logger.Infof("Stored key at %s", keyPath)

	result := &KeygenResult{KeyPath: keyPath, Overwrote: exists}
	if opts.Print {
		result.Encoded = key.Encode()
	}

	auditEntry := audit.LogWithUser("keygen")
	auditEntry.KeyPath = keyPath
	audit.Log(auditEntry)

	return result, nil
}

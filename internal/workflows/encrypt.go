package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/envault/internal/audit"
	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/secrets"
)

// EncryptOptions configures the encrypt workflow.
type EncryptOptions struct {
	CommonOptions

	// FilePatterns specifies files to encrypt. If empty, all .env files are encrypted.
	FilePatterns []string

	// Output names the artifact when exactly one file is encrypted.
	Output string

	// RemoveSource deletes each plaintext after its artifact is published.
	// It is combined with the project's remove_source setting.
	RemoveSource bool

	// DryRun previews which files would be encrypted without making changes.
	DryRun bool
}

// EncryptResult contains the outcome of an encrypt operation.
type EncryptResult struct {
	// EncryptedFiles lists the artifacts that were written.
	EncryptedFiles []string

	// SourceFiles lists the .env files that were encrypted.
	SourceFiles []string

	// ProjectPath is the root path of the project, empty outside one.
	ProjectPath string

	// Cipher is the algorithm the artifacts were sealed with.
	Cipher string

	// SourcesRemoved reports whether the plaintext files were deleted.
	SourcesRemoved bool

	// DryRun indicates whether this was a dry-run (no files modified).
	DryRun bool
}

// Encrypt encrypts environment files with the project key.
//
// Each file is sealed into "<file>.envault" (or Output) through the vault,
// so an existing artifact is only replaced once its successor is fully
// written. Files are processed in order and the first failure stops the
// run; artifacts already written stay in place.
//
// Returns ErrProjectNotInitialized if neither a project nor an explicit key is available.
// Returns ErrNoFilesFound if no .env files match the specified patterns.
// Returns ErrSourceUnavailable, ErrPersistence or ErrRotationConflict from the vault.
func Encrypt(ctx context.Context, opts EncryptOptions) (*EncryptResult, error) {
	p, err := loadProject(true)
	if err != nil {
		return nil, err
	}

	envFiles, err := p.resolvePlainFiles(opts.FilePatterns)
	if err != nil {
		return nil, err
	}
	if len(envFiles) == 0 {
		return nil, kerrors.ErrNoFilesFound
	}
	if opts.Output != "" && len(envFiles) != 1 {
		return nil, fmt.Errorf("%w: --out needs exactly one source file, got %d", kerrors.ErrInvalidArguments, len(envFiles))
	}

	artifacts := make([]string, len(envFiles))
	for i, f := range envFiles {
		artifacts[i] = secrets.ArtifactPath(f)
	}
	if opts.Output != "" {
		artifacts[0] = opts.Output
	}

	removeSource := opts.RemoveSource || p.config.Vault.RemoveSource
	result := &EncryptResult{
		SourceFiles:    envFiles,
		EncryptedFiles: artifacts,
		ProjectPath:    p.path,
		SourcesRemoved: removeSource && !opts.DryRun,
		DryRun:         opts.DryRun,
	}

	if opts.DryRun {
		alg, err := p.config.Algorithm()
		if err != nil {
			return nil, err
		}
		result.Cipher = alg.String()
		return result, nil
	}

	key, _, keyPath, err := p.loadKey(opts.CommonOptions)
	if err != nil {
		return nil, err
	}

	v, alg, err := p.newVault(opts.CommonOptions, removeSource)
	if err != nil {
		return nil, err
	}
	result.Cipher = alg.String()

	for i, src := range envFiles {
		if err := v.EncryptInPlace(ctx, src, artifacts[i], key); err != nil {
			return nil, err
		}
	}

	auditEntry := audit.LogWithUser("encrypt")
	auditEntry.Files = artifacts
	auditEntry.KeyPath = keyPath
	auditEntry.Cipher = result.Cipher
	audit.Log(auditEntry)

	return result, nil
}

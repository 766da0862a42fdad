package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/envault/internal/audit"
	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/secrets"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	CommonOptions

	// FilePatterns specifies artifacts to decrypt. If empty, all artifacts are decrypted.
	FilePatterns []string

	// Output names the plaintext when exactly one artifact is decrypted.
	Output string

	// DryRun previews which files would be decrypted without making changes.
	DryRun bool
}

// DecryptResult contains the outcome of a decrypt operation.
type DecryptResult struct {
	// DecryptedFiles lists the plaintext files that were written.
	DecryptedFiles []string

	// SourceFiles lists the artifacts that were decrypted.
	SourceFiles []string

	// ProjectPath is the root path of the project, empty outside one.
	ProjectPath string

	// DryRun indicates whether this was a dry-run (no files modified).
	DryRun bool
}

// Decrypt restores plaintext files from their artifacts.
//
// Nothing is written for an artifact that fails authentication. The first
// failure stops the run.
//
// Returns ErrProjectNotInitialized if neither a project nor an explicit key is available.
// Returns ErrNoFilesFound if no artifacts match the specified patterns.
// Returns ErrArtifactMissing, ErrAuthentication or ErrRotationConflict from the vault.
func Decrypt(ctx context.Context, opts DecryptOptions) (*DecryptResult, error) {
	p, err := loadProject(true)
	if err != nil {
		return nil, err
	}

	artifacts, err := p.resolveArtifacts(opts.FilePatterns)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return nil, kerrors.ErrNoFilesFound
	}
	if opts.Output != "" && len(artifacts) != 1 {
		return nil, fmt.Errorf("%w: --out needs exactly one artifact, got %d", kerrors.ErrInvalidArguments, len(artifacts))
	}

	plainFiles := make([]string, len(artifacts))
	for i, a := range artifacts {
		plainFiles[i] = secrets.PlainPath(a)
	}
	if opts.Output != "" {
		plainFiles[0] = opts.Output
	}

	result := &DecryptResult{
		SourceFiles:    artifacts,
		DecryptedFiles: plainFiles,
		ProjectPath:    p.path,
		DryRun:         opts.DryRun,
	}
	if opts.DryRun {
		return result, nil
	}

	key, _, keyPath, err := p.loadKey(opts.CommonOptions)
	if err != nil {
		return nil, err
	}

	v, _, err := p.newVault(opts.CommonOptions, false)
	if err != nil {
		return nil, err
	}

	for i, a := range artifacts {
		if err := v.DecryptToPlain(ctx, a, plainFiles[i], key); err != nil {
			return nil, err
		}
	}

	auditEntry := audit.LogWithUser("decrypt")
	auditEntry.Files = artifacts
	auditEntry.KeyPath = keyPath
	audit.Log(auditEntry)

	return result, nil
}

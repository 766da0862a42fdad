package workflows

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/PolarWolf314/envault/internal/audit"
	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/redact"

	"github.com/joho/godotenv"
)

// ShowOptions configures the show workflow.
type ShowOptions struct {
	CommonOptions

	// Artifact is the encrypted file to display.
	Artifact string

	// Redact adds names to the project's redaction set for this call.
	Redact []string
}

// Variable is one decrypted entry.
type Variable struct {
	Name     string
	Value    string
	Redacted bool
}

// ShowResult contains the outcome of a show operation.
type ShowResult struct {
	// Artifact is the file that was opened.
	Artifact string

	// Variables are sorted by name.
	Variables []Variable

	// RedactedCount is the number of values replaced by the placeholder.
	RedactedCount int
}

// Show decrypts an artifact in memory and returns its variables with
// sensitive values redacted. Plaintext is never written to disk.
//
// Returns ErrArtifactMissing if the artifact does not exist.
// Returns ErrAuthentication if it does not open under the key.
// Returns ErrInvalidArguments if the content is not dotenv syntax.
func Show(ctx context.Context, opts ShowOptions) (*ShowResult, error) {
	if opts.Artifact == "" {
		return nil, fmt.Errorf("%w: no artifact given", kerrors.ErrInvalidArguments)
	}

	p, err := loadProject(true)
	if err != nil {
		return nil, err
	}

	artifact := opts.Artifact
	if !filepath.IsAbs(artifact) {
		root, err := p.root()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		artifact = filepath.Join(root, artifact)
	}

	key, _, keyPath, err := p.loadKey(opts.CommonOptions)
	if err != nil {
		return nil, err
	}

	v, _, err := p.newVault(opts.CommonOptions, false)
	if err != nil {
		return nil, err
	}

	plaintext, err := v.Open(ctx, artifact, key)
	if err != nil {
		return nil, err
	}

	values, err := godotenv.UnmarshalBytes(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid dotenv content: %v", kerrors.ErrInvalidArguments, opts.Artifact, err)
	}

	names := append(append([]string(nil), p.config.Redaction.Names...), opts.Redact...)
	set := redact.NewSet(names...).WithPlaceholder(p.config.Redaction.Placeholder)
	clean := redact.Apply(values, set)

	result := &ShowResult{Artifact: artifact}
	for name, value := range clean {
		redacted := set.Contains(name)
		if redacted {
			result.RedactedCount++
		}
		result.Variables = append(result.Variables, Variable{Name: name, Value: value, Redacted: redacted})
	}
	sort.Slice(result.Variables, func(i, j int) bool {
		return result.Variables[i].Name < result.Variables[j].Name
	})

	auditEntry := audit.LogWithUser("show")
	auditEntry.Files = []string{artifact}
	auditEntry.KeyPath = keyPath
	auditEntry.Details = map[string]string{"redacted": fmt.Sprint(result.RedactedCount)}
	audit.Log(auditEntry)

	return result, nil
}

package workflows

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/envault/internal/configs"
	kerrors "github.com/PolarWolf314/envault/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShow_RedactsConfiguredAndExtraNames(t *testing.T) {
	ctx := context.Background()
	dir, _ := newProject(t)
	writeFile(t, filepath.Join(dir, ".env"), "PATH_PREFIX=/home\nCOOKIE=session=abc\nDB_PASS=s3cr3t\n")
	_, err := Encrypt(ctx, EncryptOptions{})
	require.NoError(t, err)

	result, err := Show(ctx, ShowOptions{Artifact: ".env.envault", Redact: []string{"db_pass"}})
	require.NoError(t, err)

	assert.Equal(t, []Variable{
		{Name: "COOKIE", Value: "<redacted>", Redacted: true},
		{Name: "DB_PASS", Value: "<redacted>", Redacted: true},
		{Name: "PATH_PREFIX", Value: "/home"},
	}, result.Variables)
	assert.Equal(t, 2, result.RedactedCount)
	assert.NoFileExists(t, filepath.Join(dir, ".env.envault.plain"))
}

func TestShow_CustomPlaceholder(t *testing.T) {
	ctx := context.Background()
	dir, _ := newProject(t)

	config, err := configs.LoadProjectConfig()
	require.NoError(t, err)
	config.Redaction.Names = []string{"token"}
	config.Redaction.Placeholder = "***"
	require.NoError(t, configs.SaveProjectConfig(config))

	writeFile(t, filepath.Join(dir, ".env"), "TOKEN=abc\nCOOKIE=visible\n")
	_, err = Encrypt(ctx, EncryptOptions{})
	require.NoError(t, err)

	result, err := Show(ctx, ShowOptions{Artifact: ".env.envault"})
	require.NoError(t, err)
	assert.Equal(t, []Variable{
		{Name: "COOKIE", Value: "visible"},
		{Name: "TOKEN", Value: "***", Redacted: true},
	}, result.Variables)
}

func TestShow_Errors(t *testing.T) {
	ctx := context.Background()
	newProject(t)

	_, err := Show(ctx, ShowOptions{})
	assert.ErrorIs(t, err, kerrors.ErrInvalidArguments)

	_, err = Show(ctx, ShowOptions{Artifact: ".env.envault"})
	assert.ErrorIs(t, err, kerrors.ErrArtifactMissing)
}

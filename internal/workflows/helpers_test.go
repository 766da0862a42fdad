package workflows

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/envault/internal/configs"
	"github.com/PolarWolf314/envault/internal/secrets"

	"github.com/stretchr/testify/require"
)

// newWorkspace creates a temp directory, makes it the working directory and
// points the user settings at scratch locations.
func newWorkspace(t *testing.T) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	userDir := t.TempDir()

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	oldUser := *configs.UserEnvaultSettings
	oldProject := configs.ProjectEnvaultSettings
	oldConfig := configs.GlobalProjectConfig
	configs.UserEnvaultSettings.UserKeysPath = filepath.Join(userDir, "keys")
	configs.UserEnvaultSettings.UserConfigsPath = filepath.Join(userDir, "config")

	t.Setenv(KeyEnvVar, "")

	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
		*configs.UserEnvaultSettings = oldUser
		configs.ProjectEnvaultSettings = oldProject
		configs.GlobalProjectConfig = oldConfig
	})
	return dir
}

// newProject initializes an envault project in a fresh workspace.
func newProject(t *testing.T) (string, *InitResult) {
	t.Helper()
	dir := newWorkspace(t)
	result, err := Init(context.Background(), InitOptions{ProjectName: "app"})
	require.NoError(t, err)
	return dir, result
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func loadKeyFile(t *testing.T, path string) secrets.Key {
	t.Helper()
	key, err := secrets.NewFileKeyManager().Load(path)
	require.NoError(t, err)
	return key
}

func openArtifact(t *testing.T, path string, key secrets.Key) (string, error) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	plaintext, err := (&secrets.Engine{}).DecryptBytes(key, data)
	return string(plaintext), err
}

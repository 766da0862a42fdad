package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/secrets"
	"github.com/PolarWolf314/envault/internal/vault"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Unix(1700000000, 0)
}

func TestRotate_RetainOldKey(t *testing.T) {
	ctx := context.Background()
	dir, initResult := newProject(t)
	writeFile(t, filepath.Join(dir, ".env"), "A=1\n")
	writeFile(t, filepath.Join(dir, "web", ".env"), "B=2\n")
	_, err := Encrypt(ctx, EncryptOptions{})
	require.NoError(t, err)
	oldKey := loadKeyFile(t, initResult.KeyPath)

	result, err := Rotate(ctx, RotateOptions{Now: fixedNow})
	require.NoError(t, err)

	assert.Len(t, result.Artifacts, 2)
	assert.Equal(t, fmt.Sprintf("%s.%d.old", initResult.KeyPath, fixedNow().Unix()), result.RetiredKeyPath)
	assert.Equal(t, oldKey, loadKeyFile(t, result.RetiredKeyPath))
	assert.NoFileExists(t, initResult.KeyPath+PendingKeySuffix)

	newKey := loadKeyFile(t, initResult.KeyPath)
	assert.NotEqual(t, oldKey, newKey)

	for _, a := range result.Artifacts {
		got, err := openArtifact(t, a, newKey)
		require.NoError(t, err)
		assert.NotEmpty(t, got)

		_, err = openArtifact(t, a, oldKey)
		assert.ErrorIs(t, err, kerrors.ErrAuthentication)
	}

	_, err = Decrypt(ctx, DecryptOptions{})
	require.NoError(t, err)
	assert.Equal(t, "B=2\n", readFile(t, filepath.Join(dir, "web", ".env")))
}

func TestRotate_DeleteOldKey(t *testing.T) {
	ctx := context.Background()
	dir, initResult := newProject(t)
	writeFile(t, filepath.Join(dir, ".env"), "A=1\n")
	_, err := Encrypt(ctx, EncryptOptions{})
	require.NoError(t, err)

	result, err := Rotate(ctx, RotateOptions{OldKeyPolicy: vault.DeleteOldKey, Now: fixedNow})
	require.NoError(t, err)

	assert.Empty(t, result.RetiredKeyPath)
	assert.NoFileExists(t, fmt.Sprintf("%s.%d.old", initResult.KeyPath, fixedNow().Unix()))
}

func TestRotate_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	dir, initResult := newProject(t)
	good := filepath.Join(dir, ".env")
	writeFile(t, good, "GOOD=1\n")
	_, err := Encrypt(ctx, EncryptOptions{})
	require.NoError(t, err)
	oldKey := loadKeyFile(t, initResult.KeyPath)

	// An artifact sealed under some other key, visited after the good one.
	foreign, err := secrets.NewFileKeyManager().Generate()
	require.NoError(t, err)
	data, err := (&secrets.Engine{}).EncryptBytes(foreign, []byte("FOREIGN=1\n"))
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "zz", ".env.envault"), string(data))

	_, err = Rotate(ctx, RotateOptions{})
	assert.ErrorIs(t, err, kerrors.ErrAuthentication)

	assert.Equal(t, oldKey, loadKeyFile(t, initResult.KeyPath))
	assert.NoFileExists(t, initResult.KeyPath+PendingKeySuffix)
	got, err := openArtifact(t, good+".envault", oldKey)
	require.NoError(t, err)
	assert.Equal(t, "GOOD=1\n", got)
}

func TestRotate_RequiresKeyFile(t *testing.T) {
	ctx := context.Background()
	newProject(t)

	_, err := Rotate(ctx, RotateOptions{CommonOptions: CommonOptions{KeyData: make([]byte, secrets.KeySize)}})
	assert.ErrorIs(t, err, kerrors.ErrInvalidArguments)

	key, err := secrets.NewFileKeyManager().Generate()
	require.NoError(t, err)
	t.Setenv(KeyEnvVar, key.Encode())
	_, err = Rotate(ctx, RotateOptions{})
	assert.ErrorIs(t, err, kerrors.ErrInvalidArguments)
}

func TestRotate_NoArtifactsStillReplacesKey(t *testing.T) {
	_, initResult := newProject(t)
	oldKey := loadKeyFile(t, initResult.KeyPath)

	result, err := Rotate(context.Background(), RotateOptions{Now: fixedNow})
	require.NoError(t, err)

	assert.Empty(t, result.Artifacts)
	assert.NotEqual(t, oldKey, loadKeyFile(t, initResult.KeyPath))
}

// opensUnderKeyOnDisk reports whether the artifact opens under any key file
// stored next to keyPath.
func opensUnderKeyOnDisk(t *testing.T, artifact, keyPath string) bool {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(keyPath))
	require.NoError(t, err)
	for _, e := range entries {
		key, err := secrets.NewFileKeyManager().Load(filepath.Join(filepath.Dir(keyPath), e.Name()))
		if err != nil {
			continue
		}
		if _, err := openArtifact(t, artifact, key); err == nil {
			return true
		}
	}
	return false
}

func TestRotate_RefusesLeftoverPendingKey(t *testing.T) {
	ctx := context.Background()
	dir, initResult := newProject(t)
	env := filepath.Join(dir, ".env")
	writeFile(t, env, "A=1\n")
	_, err := Encrypt(ctx, EncryptOptions{})
	require.NoError(t, err)
	oldKey := loadKeyFile(t, initResult.KeyPath)

	// State left by a run that rotated the artifact but never replaced the key.
	km := secrets.NewFileKeyManager()
	pending, err := km.Generate()
	require.NoError(t, err)
	pendingPath := initResult.KeyPath + PendingKeySuffix
	require.NoError(t, km.Store(pending, pendingPath))
	data, err := (&secrets.Engine{}).EncryptBytes(pending, []byte("A=1\n"))
	require.NoError(t, err)
	writeFile(t, env+".envault", string(data))

	_, err = Rotate(ctx, RotateOptions{})
	assert.ErrorIs(t, err, kerrors.ErrRotationConflict)
	assert.Contains(t, err.Error(), pendingPath)

	assert.Equal(t, pending, loadKeyFile(t, pendingPath))
	assert.Equal(t, oldKey, loadKeyFile(t, initResult.KeyPath))
	got, err := openArtifact(t, env+".envault", pending)
	require.NoError(t, err)
	assert.Equal(t, "A=1\n", got)
}

func TestRotate_FailureAfterArtifactsKeepsPendingKey(t *testing.T) {
	ctx := context.Background()
	dir, initResult := newProject(t)
	env := filepath.Join(dir, ".env")
	writeFile(t, env, "A=1\n")
	_, err := Encrypt(ctx, EncryptOptions{})
	require.NoError(t, err)
	oldKey := loadKeyFile(t, initResult.KeyPath)

	// A directory where the retired key should go makes the retire step fail.
	retired := fmt.Sprintf("%s.%d.old", initResult.KeyPath, fixedNow().Unix())
	require.NoError(t, os.MkdirAll(filepath.Join(retired, "occupied"), 0700))

	_, err = Rotate(ctx, RotateOptions{Now: fixedNow})
	assert.ErrorIs(t, err, kerrors.ErrPersistence)

	assert.FileExists(t, initResult.KeyPath+PendingKeySuffix)
	assert.Equal(t, oldKey, loadKeyFile(t, initResult.KeyPath))
	assert.True(t, opensUnderKeyOnDisk(t, env+".envault", initResult.KeyPath))

	// A second attempt must not overwrite the only key the artifact opens under.
	_, err = Rotate(ctx, RotateOptions{Now: fixedNow})
	assert.ErrorIs(t, err, kerrors.ErrRotationConflict)
	assert.True(t, opensUnderKeyOnDisk(t, env+".envault", initResult.KeyPath))
}

func TestRotate_KeyLockHeldByAnotherRotation(t *testing.T) {
	ctx := context.Background()
	dir, initResult := newProject(t)
	env := filepath.Join(dir, ".env")
	writeFile(t, env, "A=1\n")
	_, err := Encrypt(ctx, EncryptOptions{})
	require.NoError(t, err)
	oldKey := loadKeyFile(t, initResult.KeyPath)

	held := flock.New(vault.LockPath(initResult.KeyPath))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	_, err = Rotate(ctx, RotateOptions{})
	assert.ErrorIs(t, err, kerrors.ErrRotationConflict)

	_, err = Rotate(ctx, RotateOptions{CommonOptions: CommonOptions{
		LockPolicy:  vault.LockBlock,
		LockTimeout: 100 * time.Millisecond,
	}})
	assert.ErrorIs(t, err, kerrors.ErrRotationConflict)

	assert.NoFileExists(t, initResult.KeyPath+PendingKeySuffix)
	assert.Equal(t, oldKey, loadKeyFile(t, initResult.KeyPath))
	got, err := openArtifact(t, env+".envault", oldKey)
	require.NoError(t, err)
	assert.Equal(t, "A=1\n", got)
}

func TestRotate_SequentialRunsEachSeeTheCurrentKey(t *testing.T) {
	ctx := context.Background()
	dir, initResult := newProject(t)
	env := filepath.Join(dir, ".env")
	writeFile(t, env, "A=1\n")
	_, err := Encrypt(ctx, EncryptOptions{})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := Rotate(ctx, RotateOptions{OldKeyPolicy: vault.DeleteOldKey})
		require.NoError(t, err)
	}

	got, err := openArtifact(t, env+".envault", loadKeyFile(t, initResult.KeyPath))
	require.NoError(t, err)
	assert.Equal(t, "A=1\n", got)
	assert.NoFileExists(t, initResult.KeyPath+PendingKeySuffix)
}

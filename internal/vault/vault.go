package vault

import (
	"context"
	"fmt"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
	logger "github.com/PolarWolf314/envault/internal/logging"
	"github.com/PolarWolf314/envault/internal/secrets"
	"github.com/PolarWolf314/envault/internal/utils"
)

// ArtifactFileMode is the permission set artifacts are written with.
const ArtifactFileMode os.FileMode = 0600

// PlainFileMode is used for decrypted files that did not exist before.
const PlainFileMode os.FileMode = 0644

// Options configures a Vault.
type Options struct {
	// LockPolicy decides what happens when the artifact is already locked.
	LockPolicy LockPolicy

	// LockTimeout bounds the wait under LockBlock. Zero waits until the
	// context is done.
	LockTimeout time.Duration

	// RemoveSource deletes the plaintext after a successful EncryptInPlace.
	RemoveSource bool

	// Logger receives progress and lock diagnostics.
	Logger logger.Logger
}

// Vault encrypts, decrypts and rotates configuration artifacts.
type Vault struct {
	engine CipherEngine
	opts   Options
	log    logger.Logger
	writer utils.AtomicFile
}

// New returns a Vault sealing with engine.
func New(engine CipherEngine, opts Options) *Vault {
	if opts.LockPolicy == "" {
		opts.LockPolicy = LockFailFast
	}
	return &Vault{
		engine: engine,
		opts:   opts,
		log:    opts.Logger,
	}
}

// EncryptInPlace encrypts the file at plainPath under key and publishes the
// result at artifactPath. An existing artifact is only replaced once the
// new one is fully on disk.
func (v *Vault) EncryptInPlace(ctx context.Context, plainPath, artifactPath string, key secrets.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock, err := v.acquire(ctx, artifactPath)
	if err != nil {
		return err
	}
	defer v.release(lock)

	plaintext, err := os.ReadFile(plainPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", kerrors.ErrSourceUnavailable, plainPath, err)
	}
	v.log.Debugf("Read %d bytes from %s", len(plaintext), plainPath)

	if err := v.seal(artifactPath, key, plaintext); err != nil {
		return err
	}
	v.log.Infof("Encrypted %s into %s", plainPath, artifactPath)

	if v.opts.RemoveSource {
		if err := os.Remove(plainPath); err != nil {
			return fmt.Errorf("%w: removing plaintext %s: %v", kerrors.ErrPersistence, plainPath, err)
		}
		v.log.Infof("Removed plaintext %s", plainPath)
	}
	return nil
}

// DecryptToPlain opens the artifact at artifactPath with key and publishes
// the plaintext at plainPath. Nothing is written unless the artifact
// authenticates.
func (v *Vault) DecryptToPlain(ctx context.Context, artifactPath, plainPath string, key secrets.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock, err := v.acquire(ctx, artifactPath)
	if err != nil {
		return err
	}
	defer v.release(lock)

	plaintext, err := v.open(artifactPath, key)
	if err != nil {
		return err
	}

	mode := PlainFileMode
	if info, err := os.Stat(plainPath); err == nil {
		mode = info.Mode().Perm()
	}
	if err := v.writer.Write(plainPath, plaintext, mode); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrPersistence, err)
	}
	v.log.Infof("Decrypted %s into %s", artifactPath, plainPath)
	return nil
}

// Rotate re-encrypts the artifact at artifactPath from oldKey to newKey.
// The artifact on disk is always sealed under exactly one of the two keys.
// Keys are never stored or deleted here.
func (v *Vault) Rotate(ctx context.Context, artifactPath string, oldKey, newKey secrets.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock, err := v.acquire(ctx, artifactPath)
	if err != nil {
		return err
	}
	defer v.release(lock)

	plaintext, err := v.open(artifactPath, oldKey)
	if err != nil {
		return err
	}
	if err := v.seal(artifactPath, newKey, plaintext); err != nil {
		return err
	}
	v.log.Infof("Rotated %s", artifactPath)
	return nil
}

// Open decrypts the artifact into memory under the artifact's lock.
func (v *Vault) Open(ctx context.Context, artifactPath string, key secrets.Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock, err := v.acquire(ctx, artifactPath)
	if err != nil {
		return nil, err
	}
	defer v.release(lock)

	return v.open(artifactPath, key)
}

func (v *Vault) open(artifactPath string, key secrets.Key) ([]byte, error) {
	data, err := os.ReadFile(artifactPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrArtifactMissing, artifactPath)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", kerrors.ErrPersistence, artifactPath, err)
	}

	a, err := secrets.ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", artifactPath, err)
	}
	plaintext, err := v.engine.Decrypt(key, a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", artifactPath, err)
	}
	v.log.Debugf("Opened %s (%s)", artifactPath, a.Algorithm)
	return plaintext, nil
}

func (v *Vault) seal(artifactPath string, key secrets.Key, plaintext []byte) error {
	a, err := v.engine.Encrypt(key, plaintext)
	if err != nil {
		return err
	}
	data, err := a.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: encoding artifact: %v", kerrors.ErrPersistence, err)
	}
	if err := v.writer.Write(artifactPath, data, ArtifactFileMode); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrPersistence, err)
	}
	v.log.Debugf("Wrote %d bytes to %s (%s)", len(data), artifactPath, a.Algorithm)
	return nil
}

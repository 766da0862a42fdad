package secrets

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/utils"
)

// KeySize is the key length shared by every supported algorithm.
const KeySize = 32

// KeyFileMode is the permission set a key file is written with.
const KeyFileMode os.FileMode = 0600

// Key is a symmetric key.
type Key [KeySize]byte

// String never prints key material.
func (k Key) String() string { return "Key(redacted)" }

// GoString never prints key material.
func (k Key) GoString() string { return "secrets.Key(redacted)" }

// Encode returns the base64 form used for CI secrets and stdin.
func (k Key) Encode() string {
	return base64.StdEncoding.EncodeToString(k[:])
}

// ParseKey accepts either exactly KeySize raw bytes or their base64 encoding.
func ParseKey(data []byte) (Key, error) {
	var key Key
	if len(data) == KeySize {
		copy(key[:], data)
		return key, nil
	}

	trimmed := bytes.TrimSpace(data)
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(trimmed)))
	n, err := base64.StdEncoding.Decode(decoded, trimmed)
	if err != nil {
		return key, fmt.Errorf("%w: not %d raw bytes or base64", kerrors.ErrInvalidKey, KeySize)
	}
	if n != KeySize {
		return key, fmt.Errorf("%w: expected %d bytes, got %d bytes", kerrors.ErrInvalidKey, KeySize, n)
	}
	copy(key[:], decoded[:n])
	return key, nil
}

// FileKeyManager creates keys and keeps them in files.
type FileKeyManager struct {
	// Rand is the randomness source. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

// NewFileKeyManager returns a key manager backed by crypto/rand.
func NewFileKeyManager() *FileKeyManager {
	return &FileKeyManager{Rand: rand.Reader}
}

// Generate creates a new random key.
func (m *FileKeyManager) Generate() (Key, error) {
	var key Key
	r := m.Rand
	if r == nil {
		r = rand.Reader
	}
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return Key{}, fmt.Errorf("%w: %v", kerrors.ErrKeyGeneration, err)
	}
	return key, nil
}

// Load reads a key file. The file must hold exactly KeySize bytes.
func (m *FileKeyManager) Load(path string) (Key, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Key{}, fmt.Errorf("%w: %s", kerrors.ErrKeyNotFound, path)
	}
	if err != nil {
		return Key{}, fmt.Errorf("%w: reading key %s: %v", kerrors.ErrPersistence, path, err)
	}
	if len(data) != KeySize {
		return Key{}, fmt.Errorf("%w: %s holds %d bytes, expected %d", kerrors.ErrInvalidKey, path, len(data), KeySize)
	}

	var key Key
	copy(key[:], data)
	return key, nil
}

// Store writes key to path with owner-only permissions, replacing any
// existing key. Callers must have re-encrypted everything sealed under the
// key being replaced.
func (m *FileKeyManager) Store(key Key, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: creating key directory: %v", kerrors.ErrPersistence, err)
	}
	if err := utils.WriteFileAtomic(path, key[:], KeyFileMode); err != nil {
		return fmt.Errorf("%w: storing key %s: %v", kerrors.ErrPersistence, path, err)
	}
	return nil
}

// HasLoosePermissions reports whether the key file at path is readable or
// writable by anyone other than its owner.
func HasLoosePermissions(path string) (bool, os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, err
	}
	perm := info.Mode().Perm()
	return perm&0077 != 0, perm, nil
}

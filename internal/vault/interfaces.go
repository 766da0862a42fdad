package vault

import "github.com/PolarWolf314/envault/internal/secrets"

// KeyManager creates and persists keys.
type KeyManager interface {
	Generate() (secrets.Key, error)
	Load(path string) (secrets.Key, error)
	Store(key secrets.Key, path string) error
}

// CipherEngine seals and opens artifacts.
type CipherEngine interface {
	Encrypt(key secrets.Key, plaintext []byte) (*secrets.Artifact, error)
	Decrypt(key secrets.Key, a *secrets.Artifact) ([]byte, error)
}

var (
	_ KeyManager   = (*secrets.FileKeyManager)(nil)
	_ CipherEngine = (*secrets.Engine)(nil)
)

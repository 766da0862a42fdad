package secrets

import (
	"crypto/rand"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
)

// Engine encrypts and decrypts artifacts.
type Engine struct {
	// Algorithm is used for new artifacts.
	Algorithm Algorithm

	// Rand supplies nonces. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

// NewEngine returns an engine that seals new artifacts with alg.
func NewEngine(alg Algorithm) (*Engine, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrUnsupportedAlgorithm, alg)
	}
	return &Engine{Algorithm: alg, Rand: rand.Reader}, nil
}

// Encrypt seals plaintext under key with a fresh random nonce.
func (e *Engine) Encrypt(key Key, plaintext []byte) (*Artifact, error) {
	alg := e.Algorithm
	if alg == 0 {
		alg = DefaultAlgorithm
	}
	s, err := newSealer(alg, &key)
	if err != nil {
		return nil, err
	}

	r := e.Rand
	if r == nil {
		r = rand.Reader
	}
	nonce := make([]byte, alg.NonceSize())
	if _, err := io.ReadFull(r, nonce); err != nil {
		return nil, fmt.Errorf("%w: generating nonce: %v", kerrors.ErrKeyGeneration, err)
	}

	a := &Artifact{
		Version:   ArtifactVersion,
		Algorithm: alg,
		Nonce:     nonce,
	}
	a.Ciphertext, a.Tag = s.seal(nonce, plaintext, a.header())
	return a, nil
}

// Decrypt verifies and opens a. It uses the algorithm recorded in the
// artifact, not e.Algorithm. No plaintext is returned unless the tag
// verifies.
func (e *Engine) Decrypt(key Key, a *Artifact) ([]byte, error) {
	if a == nil || a.Version != ArtifactVersion || !a.Algorithm.Valid() ||
		len(a.Nonce) != a.Algorithm.NonceSize() || len(a.Tag) != TagSize {
		return nil, fmt.Errorf("%w: invalid envelope fields", kerrors.ErrMalformedArtifact)
	}

	s, err := newSealer(a.Algorithm, &key)
	if err != nil {
		return nil, err
	}

	plaintext, ok := s.open(a.Nonce, a.Ciphertext, a.Tag, a.header())
	if !ok {
		return nil, fmt.Errorf("%w: tag mismatch (wrong key or modified artifact)", kerrors.ErrAuthentication)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// EncryptBytes seals plaintext and returns the serialized envelope.
func (e *Engine) EncryptBytes(key Key, plaintext []byte) ([]byte, error) {
	a, err := e.Encrypt(key, plaintext)
	if err != nil {
		return nil, err
	}
	return a.MarshalBinary()
}

// DecryptBytes parses a serialized envelope and opens it.
func (e *Engine) DecryptBytes(key Key, data []byte) ([]byte, error) {
	a, err := ParseArtifact(data)
	if err != nil {
		return nil, err
	}
	return e.Decrypt(key, a)
}

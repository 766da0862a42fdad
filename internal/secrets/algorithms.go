package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/nacl/secretbox"
)

// Algorithm identifies the cipher an artifact was sealed with. The numeric
// value is written into the artifact header and must never change.
type Algorithm uint8

const (
	XSalsa20Poly1305  Algorithm = 1
	XChaCha20Poly1305 Algorithm = 2
	AES256GCM         Algorithm = 3
)

// DefaultAlgorithm is used when no cipher is configured.
const DefaultAlgorithm = XSalsa20Poly1305

// TagSize is the authentication tag length for every supported algorithm.
const TagSize = 16

var algorithmNames = map[Algorithm]string{
	XSalsa20Poly1305:  "xsalsa20-poly1305",
	XChaCha20Poly1305: "xchacha20-poly1305",
	AES256GCM:         "aes-256-gcm",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(a))
}

// Valid reports whether a is a supported algorithm.
func (a Algorithm) Valid() bool {
	_, ok := algorithmNames[a]
	return ok
}

// NonceSize returns the nonce length for a, or 0 if a is unknown.
func (a Algorithm) NonceSize() int {
	switch a {
	case XSalsa20Poly1305:
		return 24
	case XChaCha20Poly1305:
		return chacha20poly1305.NonceSizeX
	case AES256GCM:
		return 12
	default:
		return 0
	}
}

// ParseAlgorithm converts a configured cipher name into an Algorithm.
// An empty name selects DefaultAlgorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultAlgorithm, nil
	}
	for alg, n := range algorithmNames {
		if n == name {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", kerrors.ErrUnsupportedAlgorithm, name)
}

// AlgorithmNames lists the supported cipher names in header order.
func AlgorithmNames() []string {
	return []string{
		XSalsa20Poly1305.String(),
		XChaCha20Poly1305.String(),
		AES256GCM.String(),
	}
}

// sealer splits the ciphertext and tag so the envelope can store them
// as separate fields.
type sealer interface {
	seal(nonce, plaintext, aad []byte) (ciphertext, tag []byte)
	open(nonce, ciphertext, tag, aad []byte) ([]byte, bool)
}

func newSealer(alg Algorithm, key *Key) (sealer, error) {
	switch alg {
	case XSalsa20Poly1305:
		return secretboxSealer{key: key}, nil
	case XChaCha20Poly1305:
		aead, err := chacha20poly1305.NewX(key[:])
		if err != nil {
			return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
		}
		return aeadSealer{aead: aead}, nil
	case AES256GCM:
		block, err := aes.NewCipher(key[:])
		if err != nil {
			return nil, fmt.Errorf("creating AES cipher: %w", err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("creating GCM: %w", err)
		}
		return aeadSealer{aead: aead}, nil
	default:
		return nil, fmt.Errorf("%w: %s", kerrors.ErrUnsupportedAlgorithm, alg)
	}
}

// secretboxSealer has no associated data; the header is still covered
// because a changed nonce or algorithm byte fails to open.
type secretboxSealer struct {
	key *Key
}

func (s secretboxSealer) seal(nonce, plaintext, _ []byte) ([]byte, []byte) {
	var n [24]byte
	copy(n[:], nonce)
	k := (*[KeySize]byte)(s.key)
	box := secretbox.Seal(nil, plaintext, &n, k)
	// secretbox places the tag in front of the ciphertext.
	return box[secretbox.Overhead:], box[:secretbox.Overhead]
}

func (s secretboxSealer) open(nonce, ciphertext, tag, _ []byte) ([]byte, bool) {
	var n [24]byte
	copy(n[:], nonce)
	k := (*[KeySize]byte)(s.key)
	box := make([]byte, 0, len(tag)+len(ciphertext))
	box = append(box, tag...)
	box = append(box, ciphertext...)
	return secretbox.Open(nil, box, &n, k)
}

type aeadSealer struct {
	aead cipher.AEAD
}

func (s aeadSealer) seal(nonce, plaintext, aad []byte) ([]byte, []byte) {
	sealed := s.aead.Seal(nil, nonce, plaintext, aad)
	split := len(sealed) - s.aead.Overhead()
	return sealed[:split], sealed[split:]
}

func (s aeadSealer) open(nonce, ciphertext, tag, aad []byte) ([]byte, bool) {
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)
	plaintext, err := s.aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, false
	}
	return plaintext, true
}

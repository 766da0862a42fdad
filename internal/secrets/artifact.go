package secrets

import (
	"bytes"
	"fmt"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
)

// ArtifactExtension is appended to a plaintext path to name its artifact.
const ArtifactExtension = ".envault"

// LockExtension is appended to an artifact or key path to name the lock
// file guarding it. Lock files are never sources or artifacts.
const LockExtension = ".lock"

// ArtifactVersion is the envelope version written by this build.
const ArtifactVersion uint8 = 1

var artifactMagic = []byte("EVLT")

// magic, version, algorithm, nonce length
const fixedHeaderSize = 4 + 1 + 1 + 1

// Artifact is a sealed configuration file.
type Artifact struct {
	Version    uint8
	Algorithm  Algorithm
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
}

// header returns the bytes preceding the ciphertext. They are bound to the
// ciphertext as associated data.
func (a *Artifact) header() []byte {
	h := make([]byte, 0, fixedHeaderSize+len(a.Nonce))
	h = append(h, artifactMagic...)
	h = append(h, a.Version, byte(a.Algorithm), byte(len(a.Nonce)))
	h = append(h, a.Nonce...)
	return h
}

// MarshalBinary encodes the artifact into its on-disk envelope.
func (a *Artifact) MarshalBinary() ([]byte, error) {
	if len(a.Nonce) > 255 {
		return nil, fmt.Errorf("nonce too long: %d bytes", len(a.Nonce))
	}
	if len(a.Tag) != TagSize {
		return nil, fmt.Errorf("tag must be %d bytes, got %d", TagSize, len(a.Tag))
	}
	out := a.header()
	out = append(out, a.Ciphertext...)
	out = append(out, a.Tag...)
	return out, nil
}

// UnmarshalBinary parses an on-disk envelope. Any structural problem is
// reported as ErrMalformedArtifact.
func (a *Artifact) UnmarshalBinary(data []byte) error {
	if len(data) < fixedHeaderSize || !bytes.Equal(data[:4], artifactMagic) {
		return fmt.Errorf("%w: missing envelope header", kerrors.ErrMalformedArtifact)
	}

	version := data[4]
	if version != ArtifactVersion {
		return fmt.Errorf("%w: unsupported version %d", kerrors.ErrMalformedArtifact, version)
	}

	alg := Algorithm(data[5])
	if !alg.Valid() {
		return fmt.Errorf("%w: unknown algorithm %d", kerrors.ErrMalformedArtifact, data[5])
	}

	nonceLen := int(data[6])
	if nonceLen != alg.NonceSize() {
		return fmt.Errorf("%w: nonce length %d does not match %s", kerrors.ErrMalformedArtifact, nonceLen, alg)
	}

	headerLen := fixedHeaderSize + nonceLen
	if len(data) < headerLen+TagSize {
		return fmt.Errorf("%w: truncated", kerrors.ErrMalformedArtifact)
	}

	body := data[headerLen : len(data)-TagSize]
	*a = Artifact{
		Version:    version,
		Algorithm:  alg,
		Nonce:      bytes.Clone(data[fixedHeaderSize:headerLen]),
		Ciphertext: bytes.Clone(body),
		Tag:        bytes.Clone(data[len(data)-TagSize:]),
	}
	return nil
}

// ParseArtifact decodes data into an Artifact.
func ParseArtifact(data []byte) (*Artifact, error) {
	a := &Artifact{}
	if err := a.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return a, nil
}

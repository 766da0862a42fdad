// Package secrets provides the cryptographic building blocks of envault.
//
// # Keys
//
// A Key is 32 bytes from a CSPRNG. It is an array value: it is copied and
// swapped as a whole, never edited in place. FileKeyManager generates keys
// and persists them as 32 raw bytes with 0600 permissions, replacing the
// file atomically.
//
// Keys can also be supplied in base64 (stdin or the ENVAULT_KEY
// environment variable); ParseKey accepts both forms.
//
// # Artifacts
//
// Engine seals a plaintext into an Artifact and opens it again. Every call
// to Encrypt draws a fresh random nonce, so encrypting the same file twice
// produces different output. The serialized envelope is:
//
//	"EVLT" | version | algorithm | nonce length | nonce | ciphertext | tag
//
// For AEAD algorithms the header (magic through nonce) is bound as
// associated data. Decrypt verifies the tag before returning anything and
// fails with ErrAuthentication otherwise; a header that cannot be parsed is
// ErrMalformedArtifact, which is also an authentication failure.
//
// # Algorithms
//
//   - xsalsa20-poly1305: NaCl secretbox, the default
//   - xchacha20-poly1305: 24-byte nonces, safe for random generation
//   - aes-256-gcm: hardware accelerated on most CPUs
//
// Decrypt always uses the algorithm recorded in the artifact, so changing
// the configured cipher only affects newly written artifacts.
//
// # File Discovery
//
// ResolveFiles expands files, directories and doublestar globs into .env
// or .envault paths, skipping the project's .envault directory.
package secrets

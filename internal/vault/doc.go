// Package vault moves configuration files between their plaintext and
// encrypted forms without ever leaving a half-written file behind.
//
// # Operations
//
// A Vault offers three operations, each synchronous:
//
//   - EncryptInPlace reads a plaintext file and publishes its artifact.
//   - DecryptToPlain opens an artifact and publishes the plaintext.
//   - Rotate re-encrypts an artifact from one key to another.
//
// Every write goes to a temp file in the destination directory, is fsynced,
// and is renamed over the destination. A failure at any step leaves the
// previous destination untouched.
//
// # Locking
//
// Each operation holds an exclusive advisory lock on "<artifact>.lock" for
// its whole duration. With LockFailFast a second operation on the same
// artifact returns ErrRotationConflict at once; with LockBlock it waits,
// up to Options.LockTimeout when one is set.
//
// # Collaborators
//
// The vault depends on the narrow CipherEngine and KeyManager interfaces
// declared here; internal/secrets provides the implementations.
package vault

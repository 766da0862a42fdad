// Package errors provides typed error values for envault.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. Each
// sentinel is an error kind: the CLI maps kinds to distinct exit codes so
// scripts can tell "the artifact is corrupt, regenerate it" apart from
// "another rotation holds the lock, retry later".
//
// # Error Categories
//
//   - Key errors: ErrKeyGeneration, ErrInvalidKey (and ErrKeyNotFound)
//   - Crypto errors: ErrAuthentication (and ErrMalformedArtifact)
//   - File errors: ErrPersistence, ErrSourceUnavailable, ErrArtifactMissing
//   - Concurrency errors: ErrRotationConflict
//   - Project errors: ErrProjectNotInitialized, ErrInvalidConfig, ...
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("%w: reading %s: %v", errors.ErrPersistence, path, err)
//
// Handle errors in the CLI layer:
//
//	if errors.Is(err, kerrors.ErrAuthentication) {
//	    // Wrong key or tampered artifact
//	}
//	os.Exit(kerrors.ExitCode(err))
package errors

package errors

import (
	"errors"
	"fmt"
)

// Key errors indicate problems producing or reading key material.
var (
	// ErrKeyGeneration indicates the source of randomness was unavailable.
	ErrKeyGeneration = errors.New("failed to generate key")

	// ErrInvalidKey indicates the key has the wrong length or format.
	ErrInvalidKey = errors.New("invalid key")

	// ErrKeyNotFound indicates no key exists at the given location.
	ErrKeyNotFound = fmt.Errorf("%w: key not found", ErrInvalidKey)
)

// Cryptographic errors indicate an artifact could not be opened.
var (
	// ErrAuthentication indicates the authentication tag did not verify:
	// the artifact was tampered with, corrupted, or sealed under another key.
	ErrAuthentication = errors.New("artifact failed authentication")

	// ErrMalformedArtifact indicates the artifact envelope could not be parsed.
	ErrMalformedArtifact = fmt.Errorf("%w: malformed artifact", ErrAuthentication)
)

// File errors indicate issues reading or publishing files.
var (
	// ErrPersistence indicates a filesystem write, rename or read failed.
	ErrPersistence = errors.New("persistence failure")

	// ErrSourceUnavailable indicates the plaintext configuration is missing.
	ErrSourceUnavailable = errors.New("plaintext source unavailable")

	// ErrArtifactMissing indicates the encrypted artifact does not exist.
	ErrArtifactMissing = errors.New("encrypted artifact missing")

	// ErrNoFilesFound indicates no files matched the provided patterns.
	ErrNoFilesFound = errors.New("no matching files found")

	// ErrFileExists indicates the command refused to overwrite a file.
	ErrFileExists = errors.New("file already exists")
)

// Concurrency errors.
var (
	// ErrRotationConflict indicates another operation holds the artifact lock.
	ErrRotationConflict = errors.New("artifact is locked by another operation")
)

// Project state errors indicate issues with project configuration or initialization.
var (
	// ErrProjectNotInitialized indicates the project has not been set up with envault.
	ErrProjectNotInitialized = errors.New("project has not been initialized")

	// ErrProjectAlreadyInitialized indicates the project has already been set up.
	ErrProjectAlreadyInitialized = errors.New("project has already been initialized")

	// ErrInvalidConfig indicates the project configuration is malformed.
	ErrInvalidConfig = errors.New("project configuration is invalid")

	// ErrUnsupportedAlgorithm indicates an unknown cipher was configured.
	ErrUnsupportedAlgorithm = fmt.Errorf("%w: unsupported algorithm", ErrInvalidConfig)
)

// Input validation errors.
var (
	// ErrInvalidDateFormat indicates a date flag could not be parsed.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidArguments indicates a combination of arguments that cannot be honored.
	ErrInvalidArguments = errors.New("invalid arguments")
)

package errors

import "errors"

// Exit codes returned by the CLI. 1 is reserved for unclassified failures.
const (
	ExitOK                = 0
	ExitUnknown           = 1
	ExitKeyGeneration     = 10
	ExitInvalidKey        = 11
	ExitPersistence       = 12
	ExitAuthentication    = 13
	ExitSourceUnavailable = 14
	ExitArtifactMissing   = 15
	ExitRotationConflict  = 16
	ExitInvalidConfig     = 17
)

type kind struct {
	err  error
	name string
	code int
}

// Ordered so that refinements are found through their base kind.
var kinds = []kind{
	{ErrKeyGeneration, "key_generation", ExitKeyGeneration},
	{ErrInvalidKey, "invalid_key", ExitInvalidKey},
	{ErrAuthentication, "authentication", ExitAuthentication},
	{ErrSourceUnavailable, "source_unavailable", ExitSourceUnavailable},
	{ErrArtifactMissing, "artifact_missing", ExitArtifactMissing},
	{ErrRotationConflict, "rotation_conflict", ExitRotationConflict},
	{ErrPersistence, "persistence", ExitPersistence},
	{ErrInvalidConfig, "invalid_config", ExitInvalidConfig},
}

// KindOf returns the name of the error kind err belongs to, "unknown" for
// unclassified errors and "" for nil.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return ExitUnknown
}

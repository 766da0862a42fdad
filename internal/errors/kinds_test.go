package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Nil", nil, ExitOK},
		{"Unclassified", errors.New("boom"), ExitUnknown},
		{"KeyGeneration", ErrKeyGeneration, ExitKeyGeneration},
		{"InvalidKey", ErrInvalidKey, ExitInvalidKey},
		{"KeyNotFoundIsInvalidKey", ErrKeyNotFound, ExitInvalidKey},
		{"Authentication", ErrAuthentication, ExitAuthentication},
		{"MalformedIsAuthentication", ErrMalformedArtifact, ExitAuthentication},
		{"Persistence", ErrPersistence, ExitPersistence},
		{"SourceUnavailable", ErrSourceUnavailable, ExitSourceUnavailable},
		{"ArtifactMissing", ErrArtifactMissing, ExitArtifactMissing},
		{"RotationConflict", ErrRotationConflict, ExitRotationConflict},
		{"InvalidConfig", ErrInvalidConfig, ExitInvalidConfig},
		{"Wrapped", fmt.Errorf("%w: writing .env.envault: disk full", ErrPersistence), ExitPersistence},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode(%v) = %d, expected %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, expected empty", got)
	}
	if got := KindOf(errors.New("boom")); got != "unknown" {
		t.Errorf("KindOf(unclassified) = %q, expected unknown", got)
	}
	wrapped := fmt.Errorf("rotating .env.envault: %w", ErrRotationConflict)
	if got := KindOf(wrapped); got != "rotation_conflict" {
		t.Errorf("KindOf(wrapped) = %q, expected rotation_conflict", got)
	}
}

func TestRefinementsMatchBaseKind(t *testing.T) {
	if !errors.Is(ErrKeyNotFound, ErrInvalidKey) {
		t.Error("ErrKeyNotFound should match ErrInvalidKey")
	}
	if !errors.Is(ErrUnsupportedAlgorithm, ErrInvalidConfig) {
		t.Error("ErrUnsupportedAlgorithm should match ErrInvalidConfig")
	}
	if !errors.Is(ErrMalformedArtifact, ErrAuthentication) {
		t.Error("ErrMalformedArtifact should match ErrAuthentication")
	}
}

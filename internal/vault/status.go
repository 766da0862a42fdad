package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State describes where a configuration file is in its lifecycle.
type State int

const (
	// Missing means neither the plaintext nor the artifact exists.
	Missing State = iota
	// Plain means only the plaintext exists.
	Plain
	// Encrypted means an artifact exists.
	Encrypted
	// Transitioning means a vault operation currently holds the lock.
	Transitioning
)

func (s State) String() string {
	switch s {
	case Plain:
		return "plain"
	case Encrypted:
		return "encrypted"
	case Transitioning:
		return "transitioning"
	default:
		return "missing"
	}
}

// Status is a snapshot of one plaintext/artifact pair.
type Status struct {
	PlainPath    string
	ArtifactPath string
	State        State

	PlainExists    bool
	ArtifactExists bool
	PlainModTime   time.Time
	ArtifactMod    time.Time

	// StaleTemps lists temp files left next to the artifact by an
	// interrupted write. They are only reported when no lock is held.
	StaleTemps []string
}

// PlainNewer reports whether the plaintext was modified after the artifact
// was last written.
func (s Status) PlainNewer() bool {
	return s.PlainExists && s.ArtifactExists && s.PlainModTime.After(s.ArtifactMod)
}

// Inspect reports the state of a plaintext/artifact pair without taking the
// lock.
func Inspect(plainPath, artifactPath string) (Status, error) {
	st := Status{PlainPath: plainPath, ArtifactPath: artifactPath}

	if info, err := os.Stat(plainPath); err == nil {
		st.PlainExists = true
		st.PlainModTime = info.ModTime()
	} else if !os.IsNotExist(err) {
		return st, fmt.Errorf("stat %s: %w", plainPath, err)
	}

	if info, err := os.Stat(artifactPath); err == nil {
		st.ArtifactExists = true
		st.ArtifactMod = info.ModTime()
	} else if !os.IsNotExist(err) {
		return st, fmt.Errorf("stat %s: %w", artifactPath, err)
	}

	switch {
	case isLocked(artifactPath):
		st.State = Transitioning
	case st.ArtifactExists:
		st.State = Encrypted
	case st.PlainExists:
		st.State = Plain
	default:
		st.State = Missing
	}

	if st.State != Transitioning {
		st.StaleTemps = staleTemps(artifactPath)
	}
	return st, nil
}

func staleTemps(artifactPath string) []string {
	pattern := filepath.Join(filepath.Dir(artifactPath), "."+filepath.Base(artifactPath)+".tmp-*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	return matches
}

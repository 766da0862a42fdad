package workflows

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PolarWolf314/envault/internal/configs"
	"github.com/PolarWolf314/envault/internal/secrets"
	"github.com/PolarWolf314/envault/internal/vault"
)

// FileStatus describes whether an artifact is up to date with its plaintext.
type FileStatus string

const (
	// StatusCurrent means the encrypted file is newer than the plaintext.
	StatusCurrent FileStatus = "current"
	// StatusStale means the plaintext was modified after encryption.
	StatusStale FileStatus = "stale"
	// StatusUnencrypted means plaintext exists with no encrypted version.
	StatusUnencrypted FileStatus = "unencrypted"
	// StatusEncryptedOnly means encrypted exists with no plaintext.
	StatusEncryptedOnly FileStatus = "encrypted_only"
	// StatusAbsent means neither file exists.
	StatusAbsent FileStatus = "absent"
)

// FileStatusInfo holds information about a file's encryption status.
type FileStatusInfo struct {
	// Path is the plaintext path relative to the project root.
	Path string

	// State is the lifecycle state reported by the vault.
	State vault.State

	// Status compares the plaintext and artifact modification times.
	Status FileStatus

	// PlaintextMtime is the modification time of the plaintext file (if any).
	PlaintextMtime string

	// EncryptedMtime is the modification time of the encrypted file (if any).
	EncryptedMtime string

	// StaleTemps lists leftovers from interrupted writes, relative to the project root.
	StaleTemps []string
}

// StatusSummary holds counts of files by status.
type StatusSummary struct {
	// Current is the count of files that are up to date.
	Current int `json:"current"`

	// Stale is the count of files where plaintext was modified after encryption.
	Stale int `json:"stale"`

	// Unencrypted is the count of files that have no encrypted version.
	Unencrypted int `json:"unencrypted"`

	// EncryptedOnly is the count of files that only have an encrypted version.
	EncryptedOnly int `json:"encrypted_only"`

	// Transitioning is the count of files locked by a running operation.
	Transitioning int `json:"transitioning"`

	// Missing is the count of requested files where neither form exists.
	Missing int `json:"missing"`
}

// StatusOptions configures the status workflow.
type StatusOptions struct {
	// Files limits the report to these plaintext paths. Unlike other
	// workflows, they are taken literally so absent files are reported.
	Files []string
}

// StatusResult contains the outcome of a status operation.
type StatusResult struct {
	// ProjectName is the name of the project.
	ProjectName string

	// Files contains the status of each discovered file.
	Files []FileStatusInfo

	// Summary contains counts of files by status.
	Summary StatusSummary
}

// Status reports the state of every configuration file in the project.
//
// Without Files it discovers all .env files and artifacts; a plaintext and
// its artifact are reported once, under the plaintext path.
//
// Returns ErrProjectNotInitialized if the project has no .envault directory.
// Returns ErrInvalidConfig if the project config is malformed.
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	p, err := loadProject(false)
	if err != nil {
		return nil, err
	}

	projectName := p.config.Project.Name
	if projectName == "" {
		projectName = configs.ProjectEnvaultSettings.ProjectName
	}

	basePaths, err := statusPaths(p.path, opts.Files)
	if err != nil {
		return nil, fmt.Errorf("discovering file statuses: %w", err)
	}

	files := make([]FileStatusInfo, 0, len(basePaths))
	for _, basePath := range basePaths {
		info, err := fileStatus(p.path, basePath)
		if err != nil {
			return nil, err
		}
		files = append(files, info)
	}

	// Sort files by path for consistent output.
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return &StatusResult{
		ProjectName: projectName,
		Files:       files,
		Summary:     calculateStatusSummary(files),
	}, nil
}

// statusPaths returns the plaintext paths to report on.
func statusPaths(projectPath string, requested []string) ([]string, error) {
	if len(requested) > 0 {
		paths := make([]string, len(requested))
		for i, r := range requested {
			r = strings.TrimSuffix(r, secrets.ArtifactExtension)
			if !filepath.IsAbs(r) {
				r = filepath.Join(projectPath, r)
			}
			paths[i] = r
		}
		return paths, nil
	}

	envFiles, err := secrets.FindEnvFiles(projectPath, defaultIgnoreDirs, false)
	if err != nil {
		return nil, fmt.Errorf("finding env files: %w", err)
	}
	artifacts, err := secrets.FindEnvFiles(projectPath, defaultIgnoreDirs, true)
	if err != nil {
		return nil, fmt.Errorf("finding artifacts: %w", err)
	}

	seen := make(map[string]bool)
	var paths []string
	for _, f := range envFiles {
		if !seen[f] {
			seen[f] = true
			paths = append(paths, f)
		}
	}
	for _, f := range artifacts {
		base := secrets.PlainPath(f)
		if !seen[base] {
			seen[base] = true
			paths = append(paths, base)
		}
	}
	return paths, nil
}

func fileStatus(projectPath, basePath string) (FileStatusInfo, error) {
	st, err := vault.Inspect(basePath, secrets.ArtifactPath(basePath))
	if err != nil {
		return FileStatusInfo{}, err
	}

	info := FileStatusInfo{
		Path:  relativeTo(projectPath, basePath),
		State: st.State,
	}
	if st.PlainExists {
		info.PlaintextMtime = st.PlainModTime.Format(time.RFC3339)
	}
	if st.ArtifactExists {
		info.EncryptedMtime = st.ArtifactMod.Format(time.RFC3339)
	}
	for _, tmp := range st.StaleTemps {
		info.StaleTemps = append(info.StaleTemps, relativeTo(projectPath, tmp))
	}

	switch {
	case st.PlainExists && st.ArtifactExists:
		if st.PlainNewer() {
			info.Status = StatusStale
		} else {
			info.Status = StatusCurrent
		}
	case st.PlainExists:
		info.Status = StatusUnencrypted
	case st.ArtifactExists:
		info.Status = StatusEncryptedOnly
	default:
		info.Status = StatusAbsent
	}
	return info, nil
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// calculateStatusSummary calculates the counts of files by status.
func calculateStatusSummary(files []FileStatusInfo) StatusSummary {
	var summary StatusSummary
	for _, file := range files {
		switch file.Status {
		case StatusCurrent:
			summary.Current++
		case StatusStale:
			summary.Stale++
		case StatusUnencrypted:
			summary.Unencrypted++
		case StatusEncryptedOnly:
			summary.EncryptedOnly++
		}
		switch file.State {
		case vault.Transitioning:
			summary.Transitioning++
		case vault.Missing:
			summary.Missing++
		}
	}
	return summary
}

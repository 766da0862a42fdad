package secrets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/utils"

	"github.com/bmatcuk/doublestar/v4"
)

// ArtifactPath returns the artifact path for a plaintext file.
func ArtifactPath(plainPath string) string {
	return plainPath + ArtifactExtension
}

// PlainPath returns the plaintext path for an artifact.
func PlainPath(artifactPath string) string {
	return strings.TrimSuffix(artifactPath, ArtifactExtension)
}

// ResolveFiles takes user-provided paths/globs and returns matching files.
// If patterns is empty, returns nil (caller should use default behavior).
// forEncryption=true finds .env* files, forEncryption=false finds *.envault files.
func ResolveFiles(patterns []string, projectPath string, forEncryption bool) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		resolved, err := resolvePattern(pattern, projectPath, forEncryption)
		if err != nil {
			return nil, err
		}

		for _, f := range resolved {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	if len(files) == 0 {
		return nil, kerrors.ErrNoFilesFound
	}

	return files, nil
}

func resolvePattern(pattern string, projectPath string, forEncryption bool) ([]string, error) {
	absPattern := pattern
	if !filepath.IsAbs(pattern) {
		absPattern = filepath.Join(projectPath, pattern)
	}

	info, err := os.Stat(absPattern)
	if err == nil && info.IsDir() {
		return FindEnvFiles(absPattern, nil, !forEncryption)
	}

	if strings.ContainsAny(pattern, "*?[") {
		return expandGlob(absPattern, pattern, forEncryption)
	}

	if os.IsNotExist(err) {
		if forEncryption {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrSourceUnavailable, pattern)
		}
		return nil, fmt.Errorf("%w: %s", kerrors.ErrArtifactMissing, pattern)
	}

	if forEncryption && !isEnvFile(absPattern) {
		return nil, fmt.Errorf("file is not a .env file: %s", pattern)
	}
	if !forEncryption && !isArtifactFile(absPattern) {
		return nil, fmt.Errorf("file is not a %s file: %s", ArtifactExtension, pattern)
	}

	return []string{absPattern}, nil
}

func expandGlob(absPattern, pattern string, forEncryption bool) ([]string, error) {
	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var filtered []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if isInProjectDir(m) {
			continue
		}

		if forEncryption && isEnvFile(m) {
			filtered = append(filtered, m)
		} else if !forEncryption && isArtifactFile(m) {
			filtered = append(filtered, m)
		}
	}

	return filtered, nil
}

// FindEnvFiles walks rootDir for .env files, or for .envault artifacts when
// artifacts is true. The project's .envault directory and ignoreDirs are skipped.
func FindEnvFiles(rootDir string, ignoreDirs []string, artifacts bool) ([]string, error) {
	var result []string

	ignoreMap := make(map[string]bool)
	for _, dir := range ignoreDirs {
		ignoreMap[dir] = true
	}
	ignoreMap[utils.ProjectDirName] = true

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed while walking directory: %w", err)
		}

		if d.IsDir() {
			if path != rootDir && ignoreMap[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip irregular files such as sockets, pipes, devices, etc
		if !d.Type().IsRegular() {
			return nil
		}

		if artifacts && isArtifactFile(path) {
			result = append(result, path)
		} else if !artifacts && isEnvFile(path) {
			result = append(result, path)
		}

		return nil
	})

	return result, err
}

func isEnvFile(path string) bool {
	base := filepath.Base(path)
	if !strings.Contains(base, ".env") || strings.HasSuffix(base, ArtifactExtension) || strings.HasSuffix(base, LockExtension) {
		return false
	}
	// Leftover temp files from an interrupted publish.
	return !strings.Contains(base, ".tmp-")
}

func isArtifactFile(path string) bool {
	base := filepath.Base(path)
	return strings.Contains(base, ".env") && strings.HasSuffix(base, ArtifactExtension) && !strings.HasSuffix(base, LockExtension)
}

func isInProjectDir(path string) bool {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for _, part := range parts {
		if part == utils.ProjectDirName {
			return true
		}
	}
	return false
}

package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
)

// writeTestFile is a helper to write test files with 0644 permissions.
// #nosec G306 -- Test files are temporary and don't contain sensitive data.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { // #nosec G306
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func TestResolveFiles_EmptyPatterns(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Empty patterns should return nil (caller uses default behavior).
	files, err := ResolveFiles([]string{}, tmpDir, true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if files != nil {
		t.Errorf("Expected nil, got: %v", files)
	}
}

func TestResolveFiles_SingleFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create a test .env file.
	envFile := filepath.Join(tmpDir, ".env")
	writeTestFile(t, envFile, "TEST=value")

	files, err := ResolveFiles([]string{".env"}, tmpDir, true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected 1 file, got: %d", len(files))
	}
	if files[0] != envFile {
		t.Errorf("Expected %s, got: %s", envFile, files[0])
	}
}

func TestResolveFiles_MultipleFiles(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create test files.
	files := []string{".env", ".env.local", ".env.production"}
	for _, f := range files {
		path := filepath.Join(tmpDir, f)
		writeTestFile(t, path, "TEST=value")
	}

	resolved, err := ResolveFiles([]string{".env", ".env.local", ".env.production"}, tmpDir, true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(resolved) != 3 {
		t.Fatalf("Expected 3 files, got: %d", len(resolved))
	}
}

func TestResolveFiles_Directory(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create a subdirectory with .env files.
	subDir := filepath.Join(tmpDir, "services", "api")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}

	envFile := filepath.Join(subDir, ".env")
	writeTestFile(t, envFile, "TEST=value")

	// Resolve the directory.
	files, err := ResolveFiles([]string{"services/api/"}, tmpDir, true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected 1 file, got: %d", len(files))
	}
	if files[0] != envFile {
		t.Errorf("Expected %s, got: %s", envFile, files[0])
	}
}

func TestResolveFiles_GlobPattern(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create subdirectories with .env files.
	for _, service := range []string{"api", "web", "worker"} {
		subDir := filepath.Join(tmpDir, "services", service)
		if err := os.MkdirAll(subDir, 0755); err != nil {
			t.Fatalf("Failed to create subdir: %v", err)
		}
		envFile := filepath.Join(subDir, ".env")
		writeTestFile(t, envFile, "TEST=value")
	}

	files, err := ResolveFiles([]string{"services/*/.env"}, tmpDir, true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 files, got: %d", len(files))
	}
}

func TestResolveFiles_DoubleStarGlob(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create nested directories with .env files.
	paths := []string{
		filepath.Join(tmpDir, ".env"),
		filepath.Join(tmpDir, "services", "api", ".env"),
		filepath.Join(tmpDir, "services", "api", "config", ".env"),
	}
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		writeTestFile(t, p, "TEST=value")
	}

	files, err := ResolveFiles([]string{"**/.env"}, tmpDir, true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 files, got: %d", len(files))
	}
}

func TestResolveFiles_NonExistentFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	_, err = ResolveFiles([]string{"nonexistent.env"}, tmpDir, true)
	if !errors.Is(err, kerrors.ErrSourceUnavailable) {
		t.Fatalf("Expected ErrSourceUnavailable for non-existent file, got: %v", err)
	}

	_, err = ResolveFiles([]string{".env.envault"}, tmpDir, false)
	if !errors.Is(err, kerrors.ErrArtifactMissing) {
		t.Fatalf("Expected ErrArtifactMissing for non-existent artifact, got: %v", err)
	}
}

func TestResolveFiles_Deduplication(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create a test file.
	envFile := filepath.Join(tmpDir, ".env")
	writeTestFile(t, envFile, "TEST=value")

	// Request same file multiple times.
	files, err := ResolveFiles([]string{".env", ".env", ".env"}, tmpDir, true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected 1 file (deduplicated), got: %d", len(files))
	}
}

func TestResolveFiles_ExcludesProjectDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create a .envault directory with files that should be ignored.
	projectDir := filepath.Join(tmpDir, ".envault")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatalf("Failed to create .envault dir: %v", err)
	}
	ignoredEnv := filepath.Join(projectDir, ".env")
	writeTestFile(t, ignoredEnv, "SHOULD_BE_IGNORED=true")

	// Create a regular .env file.
	envFile := filepath.Join(tmpDir, ".env")
	writeTestFile(t, envFile, "TEST=value")

	// Use glob pattern that might match .envault directory contents.
	files, err := ResolveFiles([]string{"**/.env"}, tmpDir, true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected 1 file (excluding .envault dir), got: %d", len(files))
	}
	if files[0] != envFile {
		t.Errorf("Expected %s, got: %s", envFile, files[0])
	}
}

func TestResolveFiles_ForDecryption(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create an artifact.
	artifactFile := filepath.Join(tmpDir, ".env.envault")
	writeTestFile(t, artifactFile, "encrypted")

	files, err := ResolveFiles([]string{".env.envault"}, tmpDir, false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected 1 file, got: %d", len(files))
	}
	if files[0] != artifactFile {
		t.Errorf("Expected %s, got: %s", artifactFile, files[0])
	}
}

func TestResolveFiles_WrongFileType(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create an artifact but try to use it for encryption.
	artifactFile := filepath.Join(tmpDir, ".env.envault")
	writeTestFile(t, artifactFile, "encrypted")

	_, err = ResolveFiles([]string{".env.envault"}, tmpDir, true)
	if err == nil {
		t.Fatal("Expected error when using an artifact for encryption")
	}
}

func TestIsEnvFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".env", true},
		{".env.local", true},
		{".env.production", true},
		{"path/to/.env", true},
		{".env.envault", false},
		{".env.local.envault", false},
		{"config.toml", false},
		{"README.md", false},
		{".env.envault.tmp-1234", false},
		{".env.envault.lock", false},
		{"path/to/.env.local.envault.lock", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := isEnvFile(tt.path)
			if result != tt.expected {
				t.Errorf("isEnvFile(%q) = %v, want %v", tt.path, result, tt.expected)
			}
		})
	}
}

func TestIsArtifactFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".env.envault", true},
		{".env.local.envault", true},
		{"path/to/.env.envault", true},
		{".env.envault.lock", false},
		{".env", false},
		{".env.local", false},
		{"config.toml", false},
		{"README.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := isArtifactFile(tt.path)
			if result != tt.expected {
				t.Errorf("isArtifactFile(%q) = %v, want %v", tt.path, result, tt.expected)
			}
		})
	}
}

func TestIsInProjectDir(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".envault/audit.jsonl", true},
		{".envault/config.toml", true},
		{"path/to/.envault/file", true},
		{".env", false},
		{"services/api/.env", false},
		{".env.envault", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := isInProjectDir(tt.path)
			if result != tt.expected {
				t.Errorf("isInProjectDir(%q) = %v, want %v", tt.path, result, tt.expected)
			}
		})
	}
}

func TestResolveFiles_GlobWithoutMatches(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := ResolveFiles([]string{"services/*/.env"}, tmpDir, true)
	if !errors.Is(err, kerrors.ErrNoFilesFound) {
		t.Fatalf("Expected ErrNoFilesFound, got: %v", err)
	}
}

func TestFindEnvFiles(t *testing.T) {
	tmpDir := t.TempDir()

	paths := []string{
		filepath.Join(tmpDir, ".env"),
		filepath.Join(tmpDir, ".env.envault"),
		filepath.Join(tmpDir, "services", "api", ".env.local"),
		filepath.Join(tmpDir, "node_modules", "pkg", ".env"),
		filepath.Join(tmpDir, ".envault", ".env"),
		filepath.Join(tmpDir, ".env.envault.lock"),
	}
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		writeTestFile(t, p, "TEST=value")
	}

	plain, err := FindEnvFiles(tmpDir, []string{"node_modules"}, false)
	if err != nil {
		t.Fatalf("FindEnvFiles failed: %v", err)
	}
	if len(plain) != 2 {
		t.Fatalf("Expected 2 plaintext files, got: %v", plain)
	}

	artifacts, err := FindEnvFiles(tmpDir, nil, true)
	if err != nil {
		t.Fatalf("FindEnvFiles failed: %v", err)
	}
	if len(artifacts) != 1 || artifacts[0] != paths[1] {
		t.Fatalf("Expected only %s, got: %v", paths[1], artifacts)
	}
}

func TestArtifactPathRoundTrip(t *testing.T) {
	if got := ArtifactPath("config/.env"); got != "config/.env.envault" {
		t.Errorf("ArtifactPath = %q", got)
	}
	if got := PlainPath("config/.env.envault"); got != "config/.env" {
		t.Errorf("PlainPath = %q", got)
	}
}

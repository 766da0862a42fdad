package configs

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSaveTOMLWritesVaultAndRedactionTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".envault", "config.toml")

	config := DefaultProjectConfig()
	config.Project.Name = "billing"
	config.Vault.Cipher = "aes-256-gcm"
	config.Vault.LockPolicy = "block"
	config.Vault.RemoveSource = true
	config.Redaction.Names = []string{"PASSWORD", "STRIPE_*"}

	if err := SaveTOML(path, config); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved config: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"[project]",
		`name = "billing"`,
		"[vault]",
		`cipher = "aes-256-gcm"`,
		`lock_policy = "block"`,
		"remove_source = true",
		"[redaction]",
		`names = ["PASSWORD", "STRIPE_*"]`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected saved config to contain %q, got:\n%s", want, content)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat saved config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected config mode 0600, got %o", perm)
	}
}

func TestLoadTOMLReadsHandWrittenProjectConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[project]
project_uuid = "0b9e4a8c-0000-4000-8000-000000000000"
name = "api"

[vault]
cipher = "xchacha20-poly1305"
old_key_policy = "delete"
key_path = "keys/api.key"

[redaction]
names = ["DB_*"]
placeholder = "<hidden>"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config := DefaultProjectConfig()
	if err := LoadTOML(path, config); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	if config.Project.Name != "api" {
		t.Errorf("Expected project name api, got %q", config.Project.Name)
	}
	if config.Vault.OldKeyPolicy != "delete" {
		t.Errorf("Expected old_key_policy delete, got %q", config.Vault.OldKeyPolicy)
	}
	if config.Vault.KeyPath != "keys/api.key" {
		t.Errorf("Expected key_path keys/api.key, got %q", config.Vault.KeyPath)
	}
	if !reflect.DeepEqual(config.Redaction.Names, []string{"DB_*"}) {
		t.Errorf("Expected redaction names [DB_*], got %v", config.Redaction.Names)
	}
	if config.Redaction.Placeholder != "<hidden>" {
		t.Errorf("Expected placeholder <hidden>, got %q", config.Redaction.Placeholder)
	}
	// Keys absent from the file keep their defaults.
	if config.Vault.LockTimeout != DefaultLockTimeout.String() {
		t.Errorf("Expected default lock_timeout, got %q", config.Vault.LockTimeout)
	}
}

func TestLoadTOMLNonExistent(t *testing.T) {
	config := DefaultProjectConfig()
	if err := LoadTOML(filepath.Join(t.TempDir(), "missing.toml"), config); err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
}

func TestSaveTOMLReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	first := DefaultProjectConfig()
	first.Redaction.Names = []string{"ONE", "TWO", "THREE"}
	if err := SaveTOML(path, first); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	second := DefaultProjectConfig()
	second.Redaction.Names = []string{"ONE"}
	if err := SaveTOML(path, second); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loaded := &ProjectConfig{}
	if err := LoadTOML(path, loaded); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Redaction.Names, []string{"ONE"}) {
		t.Errorf("Expected redaction names [ONE], got %v", loaded.Redaction.Names)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only config.toml after replacing it, got %d entries", len(entries))
	}
}

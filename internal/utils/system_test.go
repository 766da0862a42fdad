package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetUsername(t *testing.T) {
	username, err := GetUsername()
	if err != nil {
		t.Fatalf("GetUsername failed: %v", err)
	}
	if username == "" {
		t.Fatal("Expected non-empty username")
	}
}

func TestGetHostname(t *testing.T) {
	hostname, err := GetHostname()
	if err != nil {
		t.Fatalf("GetHostname failed: %v", err)
	}
	if hostname == "" {
		t.Fatal("Expected non-empty hostname")
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Yes", "y\n", true},
		{"YesWord", "yes\n", true},
		{"UpperCase", "YES\n", true},
		{"No", "n\n", false},
		{"Empty", "\n", false},
		{"NoNewline", "y", true},
		{"Garbage", "maybe\n", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out strings.Builder
			got, err := Confirm(strings.NewReader(tc.input), &out, "Rotate?")
			if err != nil {
				t.Fatalf("Confirm failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("Confirm(%q) = %t, expected %t", tc.input, got, tc.want)
			}
			if !strings.Contains(out.String(), "Rotate? [y/N]") {
				t.Errorf("Expected prompt in output, got %q", out.String())
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	exists, err := FileExists(path)
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if exists {
		t.Fatal("Expected missing file to not exist")
	}

	if err := os.WriteFile(path, []byte("A=1"), 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	exists, err = FileExists(path)
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if !exists {
		t.Fatal("Expected file to exist")
	}
}

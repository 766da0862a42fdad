package utils

import (
	"fmt"
	"path/filepath"
)

// GetProjectName returns the name of the current project (directory).
func GetProjectName() (string, error) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		return "", fmt.Errorf("failed to get project directory: %w", err)
	}
	// Commands with explicit paths run outside a project, so a missing
	// root is not an error here.
	if projectRoot == "" {
		return "", nil
	}
	return filepath.Base(projectRoot), nil
}

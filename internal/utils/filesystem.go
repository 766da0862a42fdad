package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// ProjectDirName is the directory that marks an envault project root.
const ProjectDirName = ".envault"

// FindProjectRoot traverses up directories to find the project's envault root.
// Returns the path to the project root if found, empty string otherwise.
// Stops searching when it reaches the user's home directory.
func FindProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	for {
		// Stop searching at one level above home directory
		if currentDir == path.Join(homeDir, "..") {
			return "", nil
		}

		projectDir := filepath.Join(currentDir, ProjectDirName)
		fileInfo, err := os.Stat(projectDir)
		if err == nil {
			if fileInfo.IsDir() {
				return currentDir, nil
			}
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("error checking for %s directory at %s: %w", ProjectDirName, currentDir, err)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}

// FileExists reports whether path exists. A stat failure other than
// "not exist" is returned as an error.
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

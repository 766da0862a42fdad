package configs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/envault/internal/utils"
)

type UserSettings struct {
	UserKeysPath    string
	UserConfigsPath string
	Username        string
}

type ProjectSettings struct {
	ProjectName  string
	ProjectPath  string
	ConfigPath   string
	AuditLogPath string
}

var (
	UserEnvaultSettings    *UserSettings
	ProjectEnvaultSettings *ProjectSettings
)

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")

	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	username, err := utils.GetUsername()
	if err != nil {
		log.Fatalf("error getting username: %s", err)
	}

	// This is independent of what repo you are in, so it is ok to init here
	UserEnvaultSettings = &UserSettings{
		UserKeysPath:    filepath.Join(dataDir, "envault", "keys"),
		UserConfigsPath: filepath.Join(configDir, "envault"),
		Username:        username,
	}
	ProjectEnvaultSettings = &ProjectSettings{}
}

// InitProjectSettings locates the enclosing project. ProjectPath stays empty
// when the working directory is not inside one.
func InitProjectSettings() error {
	projectName, err := utils.GetProjectName()
	if err != nil {
		return fmt.Errorf("error getting project name: %w", err)
	}

	projectPath, err := utils.FindProjectRoot()
	if err != nil {
		return fmt.Errorf("error getting project root: %w", err)
	}

	ProjectEnvaultSettings = NewProjectSettings(projectPath)
	ProjectEnvaultSettings.ProjectName = projectName
	return nil
}

// NewProjectSettings returns the settings for a project rooted at projectPath.
func NewProjectSettings(projectPath string) *ProjectSettings {
	if projectPath == "" {
		return &ProjectSettings{}
	}
	projectDir := filepath.Join(projectPath, utils.ProjectDirName)
	return &ProjectSettings{
		ProjectName:  filepath.Base(projectPath),
		ProjectPath:  projectPath,
		ConfigPath:   filepath.Join(projectDir, "config.toml"),
		AuditLogPath: filepath.Join(projectDir, "audit.jsonl"),
	}
}

// DefaultKeyPath returns where the key for projectUUID lives when the
// project config does not name one.
func DefaultKeyPath(projectUUID string) string {
	return filepath.Join(UserEnvaultSettings.UserKeysPath, projectUUID+".key")
}

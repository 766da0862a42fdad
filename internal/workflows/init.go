package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/envault/internal/audit"
	"github.com/PolarWolf314/envault/internal/configs"
	kerrors "github.com/PolarWolf314/envault/internal/errors"
	logger "github.com/PolarWolf314/envault/internal/logging"
	"github.com/PolarWolf314/envault/internal/secrets"
	"github.com/PolarWolf314/envault/internal/utils"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// ProjectName is the name for the project. If empty, uses the directory name.
	ProjectName string

	// Cipher selects the algorithm for new artifacts. Empty uses the default.
	Cipher string

	// KeyPath stores the project key somewhere other than the default
	// location. It is recorded in the project config.
	KeyPath string

	Logger logger.Logger
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	// ProjectName is the name of the initialized project.
	ProjectName string

	// ProjectUUID is the unique identifier assigned to the project.
	ProjectUUID string

	// ProjectPath is the root path of the project.
	ProjectPath string

	// ConfigPath is the project config that was written.
	ConfigPath string

	// KeyPath is the project key file.
	KeyPath string

	// KeyCreated is false when an existing key file was reused.
	KeyCreated bool
}

// Init initializes a new envault project in the current directory.
//
// It writes .envault/config.toml with default settings and a fresh project
// UUID, then generates the project key unless a key file already exists at
// the configured location. On failure the .envault directory is removed.
//
// Returns ErrProjectAlreadyInitialized if a .envault directory already exists.
// Returns ErrUnsupportedAlgorithm if Cipher is not a known algorithm.
// Returns ErrKeyGeneration or ErrPersistence if the key cannot be created.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	projectDir := filepath.Join(wd, utils.ProjectDirName)
	exists, err := utils.FileExists(projectDir)
	if err != nil {
		return nil, fmt.Errorf("checking project settings: %w", err)
	}
	if exists {
		return nil, kerrors.ErrProjectAlreadyInitialized
	}

	alg, err := secrets.ParseAlgorithm(opts.Cipher)
	if err != nil {
		return nil, err
	}

	userConfig, err := configs.EnsureUserConfig()
	if err != nil {
		return nil, fmt.Errorf("ensuring user config: %w", err)
	}

	projectName := opts.ProjectName
	if projectName == "" {
		projectName = filepath.Base(wd)
	}

	projectConfig := configs.DefaultProjectConfig()
	projectConfig.Project = configs.Project{
		UUID: configs.GenerateProjectUUID(),
		Name: projectName,
	}
	projectConfig.Vault.Cipher = alg.String()
	projectConfig.Vault.KeyPath = opts.KeyPath

	cleanupNeeded := false
	defer func() {
		if cleanupNeeded {
			os.RemoveAll(projectDir)
		}
	}()

	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", kerrors.ErrPersistence, projectDir, err)
	}
	cleanupNeeded = true

	configs.ProjectEnvaultSettings = configs.NewProjectSettings(wd)
	configs.GlobalProjectConfig = projectConfig
	if err := configs.SaveProjectConfig(projectConfig); err != nil {
		return nil, fmt.Errorf("%w: saving project config: %v", kerrors.ErrPersistence, err)
	}
	opts.Logger.Infof("Wrote %s", configs.ProjectEnvaultSettings.ConfigPath)

	keyPath := projectConfig.KeyPath(wd)
	keyExists, err := utils.FileExists(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: checking key %s: %v", kerrors.ErrPersistence, keyPath, err)
	}
	if keyExists {
		opts.Logger.Infof("Reusing existing key %s", keyPath)
		warnLoosePermissions(opts.Logger, keyPath)
	} else {
		km := secrets.NewFileKeyManager()
		key, err := km.Generate()
		if err != nil {
			return nil, err
		}
		if err := km.Store(key, keyPath); err != nil {
			return nil, err
		}
		opts.Logger.Infof("Generated key %s", keyPath)
	}

	userConfig.Projects[projectConfig.Project.UUID] = wd
	if err := configs.SaveUserConfig(userConfig); err != nil {
		return nil, fmt.Errorf("updating user config with project: %w", err)
	}

	cleanupNeeded = false

	auditEntry := audit.LogWithUser("init")
	auditEntry.ProjectName = projectName
	auditEntry.ProjectUUID = projectConfig.Project.UUID
	auditEntry.KeyPath = keyPath
	auditEntry.Cipher = alg.String()
	audit.Log(auditEntry)

	return &InitResult{
		ProjectName: projectName,
		ProjectUUID: projectConfig.Project.UUID,
		ProjectPath: wd,
		ConfigPath:  configs.ProjectEnvaultSettings.ConfigPath,
		KeyPath:     keyPath,
		KeyCreated:  !keyExists,
	}, nil
}

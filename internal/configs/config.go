package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/redact"
	"github.com/PolarWolf314/envault/internal/secrets"
	"github.com/PolarWolf314/envault/internal/vault"

	"github.com/google/uuid"
)

type UserConfig struct {
	User     User              `toml:"user"`
	Projects map[string]string `toml:"projects"`
}

type User struct {
	Email string `toml:"email"`
	UUID  string `toml:"user_uuid"`
}

type ProjectConfig struct {
	Project   Project         `toml:"project"`
	Vault     VaultConfig     `toml:"vault"`
	Redaction RedactionConfig `toml:"redaction"`
}

type Project struct {
	UUID string `toml:"project_uuid"`
	Name string `toml:"name"`
}

type VaultConfig struct {
	Cipher       string `toml:"cipher"`
	LockPolicy   string `toml:"lock_policy"`
	LockTimeout  string `toml:"lock_timeout"`
	RemoveSource bool   `toml:"remove_source"`
	OldKeyPolicy string `toml:"old_key_policy"`
	// KeyPath overrides DefaultKeyPath. Relative paths are resolved
	// against the project root.
	KeyPath string `toml:"key_path"`
}

type RedactionConfig struct {
	Names       []string `toml:"names"`
	Placeholder string   `toml:"placeholder"`
}

const DefaultLockTimeout = 10 * time.Second

var (
	GlobalUserConfig    *UserConfig
	GlobalProjectConfig *ProjectConfig
)

// DefaultProjectConfig returns a config with every vault and redaction
// setting at its default. The project section is left empty.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Vault: VaultConfig{
			Cipher:       secrets.DefaultAlgorithm.String(),
			LockPolicy:   string(vault.LockFailFast),
			LockTimeout:  DefaultLockTimeout.String(),
			OldKeyPolicy: string(vault.RetainOldKey),
		},
		Redaction: RedactionConfig{
			Names:       append([]string(nil), redact.DefaultNames...),
			Placeholder: redact.Placeholder,
		},
	}
}

// LoadUserConfig loads the user configuration from the config file.
func LoadUserConfig() (*UserConfig, error) {
	configPath := filepath.Join(UserEnvaultSettings.UserConfigsPath, "config.toml")

	config := &UserConfig{
		Projects: make(map[string]string),
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if config.Projects == nil {
		config.Projects = make(map[string]string)
	}

	return config, nil
}

// SaveUserConfig saves the user configuration to the config file.
func SaveUserConfig(config *UserConfig) error {
	configPath := filepath.Join(UserEnvaultSettings.UserConfigsPath, "config.toml")

	if err := SaveTOML(configPath, config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	return nil
}

// GenerateUserUUID generates a new UUID for the user.
func GenerateUserUUID() string {
	return uuid.New().String()
}

// EnsureUserConfig ensures the user configuration exists and has a UUID.
func EnsureUserConfig() (*UserConfig, error) {
	config, err := LoadUserConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if config.User.UUID == "" {
		config.User.UUID = GenerateUserUUID()
		if err := SaveUserConfig(config); err != nil {
			return nil, fmt.Errorf("failed to save user config: %w", err)
		}
	}

	return config, nil
}

// LoadProjectConfig loads the project configuration from the config file.
// Note: Caller should ensure InitProjectSettings is called before calling this function.
func LoadProjectConfig() (*ProjectConfig, error) {
	return LoadProjectConfigFrom(projectConfigPath())
}

// LoadProjectConfigFrom loads and validates the config at configPath. A
// missing file yields the defaults.
func LoadProjectConfigFrom(configPath string) (*ProjectConfig, error) {
	config := DefaultProjectConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrInvalidConfig, configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	return config, nil
}

// SaveProjectConfig saves the project configuration to the config file.
// Note: Caller should ensure InitProjectSettings is called before calling this function.
func SaveProjectConfig(config *ProjectConfig) error {
	if err := SaveTOML(projectConfigPath(), config); err != nil {
		return fmt.Errorf("failed to save project config: %w", err)
	}

	return nil
}

func projectConfigPath() string {
	if ProjectEnvaultSettings.ConfigPath != "" {
		return ProjectEnvaultSettings.ConfigPath
	}
	return NewProjectSettings(ProjectEnvaultSettings.ProjectPath).ConfigPath
}

// GenerateProjectUUID generates a new UUID for the project.
func GenerateProjectUUID() string {
	return uuid.New().String()
}

// Validate checks that every enumerated setting parses.
func (pc *ProjectConfig) Validate() error {
	if _, err := pc.Algorithm(); err != nil {
		return err
	}
	if _, err := pc.LockPolicy(); err != nil {
		return err
	}
	if _, err := pc.LockTimeout(); err != nil {
		return err
	}
	if _, err := pc.OldKeyPolicy(); err != nil {
		return err
	}
	return nil
}

// Algorithm returns the configured cipher for new artifacts.
func (pc *ProjectConfig) Algorithm() (secrets.Algorithm, error) {
	return secrets.ParseAlgorithm(pc.Vault.Cipher)
}

// LockPolicy returns the configured lock policy.
func (pc *ProjectConfig) LockPolicy() (vault.LockPolicy, error) {
	return vault.ParseLockPolicy(pc.Vault.LockPolicy)
}

// LockTimeout returns the configured wait bound for the block policy.
func (pc *ProjectConfig) LockTimeout() (time.Duration, error) {
	if pc.Vault.LockTimeout == "" {
		return DefaultLockTimeout, nil
	}
	d, err := time.ParseDuration(pc.Vault.LockTimeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: lock_timeout %q", kerrors.ErrInvalidConfig, pc.Vault.LockTimeout)
	}
	return d, nil
}

// OldKeyPolicy returns what happens to a key after rotation.
func (pc *ProjectConfig) OldKeyPolicy() (vault.OldKeyPolicy, error) {
	return vault.ParseOldKeyPolicy(pc.Vault.OldKeyPolicy)
}

// RedactionSet returns the configured set of sensitive field names.
func (pc *ProjectConfig) RedactionSet() redact.Set {
	return redact.NewSet(pc.Redaction.Names...).WithPlaceholder(pc.Redaction.Placeholder)
}

// KeyPath returns the key file for this project. projectPath anchors a
// relative key_path.
func (pc *ProjectConfig) KeyPath(projectPath string) string {
	p := pc.Vault.KeyPath
	if p == "" {
		return DefaultKeyPath(pc.Project.UUID)
	}
	if !filepath.IsAbs(p) && projectPath != "" {
		return filepath.Join(projectPath, p)
	}
	return p
}

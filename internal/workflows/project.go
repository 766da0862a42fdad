package workflows

import (
	"fmt"
	"os"
	"time"

	"github.com/PolarWolf314/envault/internal/configs"
	kerrors "github.com/PolarWolf314/envault/internal/errors"
	logger "github.com/PolarWolf314/envault/internal/logging"
	"github.com/PolarWolf314/envault/internal/secrets"
	"github.com/PolarWolf314/envault/internal/vault"
)

// KeyEnvVar holds a base64 key. It is used when no key is given explicitly.
const KeyEnvVar = "ENVAULT_KEY"

// CommonOptions are shared by the workflows that touch artifacts.
type CommonOptions struct {
	// KeyPath overrides the project's key file.
	KeyPath string

	// KeyData holds key bytes read from stdin. It takes precedence over
	// KeyPath and KeyEnvVar.
	KeyData []byte

	// LockPolicy overrides the project's lock policy when set.
	LockPolicy vault.LockPolicy

	// LockTimeout overrides the project's lock timeout when positive.
	LockTimeout time.Duration

	Logger logger.Logger
}

// KeySource describes where a key came from.
type KeySource string

const (
	KeySourceStdin KeySource = "stdin"
	KeySourceEnv   KeySource = "env"
	KeySourceFile  KeySource = "file"
)

// project is the resolved state shared by artifact workflows.
type project struct {
	path   string
	config *configs.ProjectConfig
}

func (p *project) initialized() bool {
	return p.path != ""
}

// loadProject finds the enclosing project and loads its config. With
// optional set, running outside a project yields the default config rooted
// at the working directory.
func loadProject(optional bool) (*project, error) {
	if err := configs.InitProjectSettings(); err != nil {
		return nil, fmt.Errorf("initializing project settings: %w", err)
	}

	projectPath := configs.ProjectEnvaultSettings.ProjectPath
	if projectPath == "" {
		if !optional {
			return nil, kerrors.ErrProjectNotInitialized
		}
		configs.GlobalProjectConfig = nil
		return &project{config: configs.DefaultProjectConfig()}, nil
	}

	projectConfig, err := configs.LoadProjectConfig()
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	configs.GlobalProjectConfig = projectConfig

	return &project{path: projectPath, config: projectConfig}, nil
}

// root returns the directory relative patterns are resolved against.
func (p *project) root() (string, error) {
	if p.path != "" {
		return p.path, nil
	}
	return os.Getwd()
}

// keyPath returns the key file this project uses, honoring an override.
func (p *project) keyPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if !p.initialized() {
		return "", fmt.Errorf("%w: no key given (use --key or %s)", kerrors.ErrProjectNotInitialized, KeyEnvVar)
	}
	if p.config.Project.UUID == "" && p.config.Vault.KeyPath == "" {
		return "", fmt.Errorf("%w: project has no project_uuid or key_path", kerrors.ErrInvalidConfig)
	}
	return p.config.KeyPath(p.path), nil
}

// loadKey resolves the key in order: stdin data, --key path, KeyEnvVar,
// the project key file.
func (p *project) loadKey(opts CommonOptions) (secrets.Key, KeySource, string, error) {
	if len(opts.KeyData) > 0 {
		key, err := secrets.ParseKey(opts.KeyData)
		return key, KeySourceStdin, "", err
	}

	if opts.KeyPath == "" {
		if env := os.Getenv(KeyEnvVar); env != "" {
			key, err := secrets.ParseKey([]byte(env))
			if err != nil {
				return key, KeySourceEnv, "", fmt.Errorf("%s: %w", KeyEnvVar, err)
			}
			return key, KeySourceEnv, "", nil
		}
	}

	path, err := p.keyPath(opts.KeyPath)
	if err != nil {
		return secrets.Key{}, KeySourceFile, "", err
	}

	key, err := secrets.NewFileKeyManager().Load(path)
	if err != nil {
		return key, KeySourceFile, path, err
	}
	warnLoosePermissions(opts.Logger, path)
	return key, KeySourceFile, path, nil
}

func warnLoosePermissions(log logger.Logger, path string) {
	loose, perm, err := secrets.HasLoosePermissions(path)
	if err != nil || !loose {
		return
	}
	log.WarnfAlways("Key file %s has permissions %04o; run: chmod 600 %s", path, perm, path)
}

// newVault builds a vault from the project config, applying overrides.
func (p *project) newVault(opts CommonOptions, removeSource bool) (*vault.Vault, secrets.Algorithm, error) {
	alg, err := p.config.Algorithm()
	if err != nil {
		return nil, 0, err
	}
	engine, err := secrets.NewEngine(alg)
	if err != nil {
		return nil, 0, err
	}

	policy := opts.LockPolicy
	if policy == "" {
		if policy, err = p.config.LockPolicy(); err != nil {
			return nil, 0, err
		}
	}
	timeout := opts.LockTimeout
	if timeout <= 0 {
		if timeout, err = p.config.LockTimeout(); err != nil {
			return nil, 0, err
		}
	}

	opts.Logger.Debugf("Using cipher %s, lock policy %s (timeout %s)", alg, policy, timeout)

	return vault.New(engine, vault.Options{
		LockPolicy:   policy,
		LockTimeout:  timeout,
		RemoveSource: removeSource,
		Logger:       opts.Logger,
	}), alg, nil
}

// resolvePlainFiles finds .env files from patterns, or every .env file in
// the project when there are none.
func (p *project) resolvePlainFiles(patterns []string) ([]string, error) {
	return p.resolve(patterns, true)
}

// resolveArtifacts finds artifacts from patterns, or every artifact in the
// project when there are none.
func (p *project) resolveArtifacts(patterns []string) ([]string, error) {
	return p.resolve(patterns, false)
}

func (p *project) resolve(patterns []string, forEncryption bool) ([]string, error) {
	root, err := p.root()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	if len(patterns) > 0 {
		resolved, err := secrets.ResolveFiles(patterns, root, forEncryption)
		if err != nil {
			return nil, fmt.Errorf("resolving file patterns: %w", err)
		}
		return resolved, nil
	}

	if !p.initialized() {
		return nil, fmt.Errorf("%w: no files given outside a project", kerrors.ErrInvalidArguments)
	}

	found, err := secrets.FindEnvFiles(root, defaultIgnoreDirs, !forEncryption)
	if err != nil {
		return nil, fmt.Errorf("finding environment files: %w", err)
	}
	return found, nil
}

var defaultIgnoreDirs = []string{".git", "node_modules", "vendor"}

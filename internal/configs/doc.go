// Package configs manages user and project configuration for envault.
//
// Configuration is stored in TOML format at two levels:
//
//   - User config: <config dir>/envault/config.toml (user identity, known projects)
//   - Project config: .envault/config.toml (project identity, vault settings)
//
// # User Configuration
//
// The user config stores an optional email and a UUID generated on first
// use, plus a map of project UUIDs to the directories they were
// initialized in. Audit entries use it to identify who ran a command.
//
// # Project Configuration
//
// The project config has three sections:
//
//	[project]    project_uuid, name
//	[vault]      cipher, lock_policy, lock_timeout, remove_source,
//	             old_key_policy, key_path
//	[redaction]  names, placeholder
//
// Missing sections and keys fall back to DefaultProjectConfig. Values that
// cannot be parsed fail with ErrInvalidConfig. Typed accessors such as
// Algorithm and LockPolicy return the parsed form.
//
// # Settings
//
// Global settings are initialized at startup:
//   - UserEnvaultSettings: paths to user config and keys directories
//   - ProjectEnvaultSettings: current project's paths and identity
//
// Call InitProjectSettings() before accessing ProjectEnvaultSettings.
// It walks up the directory tree to find the nearest .envault directory.
package configs

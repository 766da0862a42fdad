// Package utils provides shared utility functions for envault.
//
// # Filesystem Utilities
//
//   - FindProjectRoot: walks up directories to find .envault
//   - AtomicFile / WriteFileAtomic: temp file, fsync, rename, directory fsync
//   - FileExists: stat helper that separates "missing" from real errors
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//   - GetHostname: returns the system hostname
//
// # Project Utilities
//
//   - GetProjectName: returns the current project's directory name
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//
// # I/O and Terminal Utilities
//
//   - ReadStdin: reads piped data from standard input
//   - IsTerminal, Confirm: interactive prompts on a TTY
package utils

// Package workflows provides high-level orchestration for envault commands.
//
// Workflows coordinate multiple operations across packages (configs, secrets,
// audit) to implement complete user-facing features. Each workflow handles
// a single command's business logic, independent of CLI concerns like flag
// parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Loading configuration (user and project)
//   - Validating prerequisites and permissions
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Available Workflows
//
// Each command has a corresponding workflow:
//
//   - Init: Initializes a new envault project and its key
//   - Keygen: Writes a fresh key file
//   - Encrypt: Encrypts .env files using the project key
//   - Decrypt: Decrypts .envault artifacts back to .env files
//   - Rotate: Replaces the project key and re-encrypts every artifact
//   - Status: Reports the lifecycle state of each configuration file
//   - Show: Prints an artifact's variables with sensitive values redacted
//   - Log: Reads and filters the audit trail
//
// # Keys
//
// Artifact workflows embed CommonOptions and resolve the key in this order:
// key bytes read from stdin, an explicit key path, the ENVAULT_KEY
// environment variable, then the project's key file. Encrypt, Decrypt and
// Show also run outside a project when given files and a key explicitly.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	result, err := workflows.Encrypt(ctx, opts)
//	if errors.Is(err, kerrors.ErrProjectNotInitialized) {
//	    // Show user-friendly initialization message
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// This enables cancellation, timeouts, and passing request-scoped values.
package workflows

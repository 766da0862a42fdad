package cmd

import (
	"time"

	logger "github.com/PolarWolf314/envault/internal/logging"
	"github.com/PolarWolf314/envault/internal/vault"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	debug       bool
	lockPolicy  vault.LockPolicy
	lockTimeout time.Duration
	Logger      logger.Logger

	RootCmd = &cobra.Command{
		Use:   "envault",
		Short: "envault - encrypt, decrypt and rotate the keys of .env files",
		Long: `envault keeps an application's .env files encrypted at rest.

Plaintext files are sealed into .env.envault artifacts with a symmetric
project key. Artifacts are replaced atomically and guarded by a lock, so a
crash or a concurrent run never leaves a half written file behind.

Usage:
  envault <command> [flags]

Run 'envault help <command>' for more details on a specific command.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().Var(&lockPolicy, "lock-policy", "what to do when an artifact is locked (fail-fast or block)")
	RootCmd.PersistentFlags().DurationVar(&lockTimeout, "lock-timeout", 0, "how long block waits for a lock (default from config)")

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(keygenCmd)
	RootCmd.AddCommand(encryptCmd)
	RootCmd.AddCommand(decryptCmd)
	RootCmd.AddCommand(rotateCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(logCmd)
}

// Helper functions for testing

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	lockPolicy = ""
	lockTimeout = 0
	Logger = logger.Logger{}
	resetInitCommandState()
	resetKeygenCommandState()
	resetEncryptCommandState()
	resetDecryptCommandState()
	resetRotateCommandState()
	resetStatusCommandState()
	resetShowCommandState()
	resetLogCommandState()
}

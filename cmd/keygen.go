package cmd

import (
	"context"

	"github.com/PolarWolf314/envault/internal/ui"
	"github.com/PolarWolf314/envault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	keygenKeyPath string
	keygenForce   bool
	keygenPrint   bool
)

func init() {
	keygenCmd.Flags().StringVar(&keygenKeyPath, "key", "", "where to store the key (defaults to the project key path)")
	keygenCmd.Flags().BoolVar(&keygenForce, "force", false, "replace an existing key file")
	keygenCmd.Flags().BoolVar(&keygenPrint, "print", false, "print the base64 key to stdout, for CI secrets")
}

func resetKeygenCommandState() {
	keygenKeyPath = ""
	keygenForce = false
	keygenPrint = false
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generates a new symmetric key",
	Long: `Generates 32 random bytes and stores them with owner-only permissions.

Replacing a key makes every artifact sealed under it unreadable, so an
existing key is only overwritten with --force. To change the key of a
project that already has artifacts, use 'envault rotate-key'.

Examples:
  envault keygen --key ./ci/deploy.key
  envault keygen --key ./ci/deploy.key --print   # for ENVAULT_KEY in CI`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keygen command")
		spinner, cleanup := startSpinner("Generating key...")
		defer cleanup()

		result, err := workflows.Keygen(context.Background(), workflows.KeygenOptions{
			KeyPath: keygenKeyPath,
			Force:   keygenForce,
			Print:   keygenPrint,
			Logger:  Logger,
		})
		if err != nil {
			return fail(spinner, err)
		}

		verb := "created"
		if result.Overwrote {
			verb = "replaced"
		}
		finalMessage := ui.Done("Key %s at %s", verb, ui.Path.Sprint(result.KeyPath))
		if result.Encoded != "" {
			finalMessage += "\n" + result.Encoded
		}
		if result.Overwrote {
			finalMessage += "\n" + ui.Warning.Sprint("⚠") + " Artifacts sealed under the previous key can no longer be opened"
		}
		spinner.FinalMSG = finalMessage
		Logger.Infof("Keygen command completed, overwrote=%t", result.Overwrote)
		return nil
	},
}

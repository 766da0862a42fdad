package cmd

import (
	"context"
	"fmt"
	"os"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/ui"
	"github.com/PolarWolf314/envault/internal/utils"
	"github.com/PolarWolf314/envault/internal/vault"
	"github.com/PolarWolf314/envault/internal/workflows"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	rotateKey          string
	rotateOldKeyPolicy vault.OldKeyPolicy
	rotateForce        bool
)

func init() {
	rotateCmd.Flags().StringVar(&rotateKey, "key", "", "key file to rotate (defaults to the project key)")
	rotateCmd.Flags().Var(&rotateOldKeyPolicy, "old-key-policy", "keep the old key as <key>.<unix>.old (retain) or remove it (delete)")
	rotateCmd.Flags().BoolVar(&rotateForce, "force", false, "skip confirmation prompt")
}

// resetRotateCommandState resets the rotate command's global state for testing.
func resetRotateCommandState() {
	rotateKey = ""
	rotateOldKeyPolicy = ""
	rotateForce = false
}

// confirmRotate prompts the user to confirm the key rotation.
func confirmRotate(s *spinner.Spinner) bool {
	s.Stop()
	defer s.Restart()

	fmt.Printf("\n%s This will generate a new key and re-encrypt every artifact.\n", ui.Warning.Sprint("Warning:"))
	fmt.Println("  Anyone holding the current key must receive the new one.")
	fmt.Println()

	ok, err := utils.Confirm(os.Stdin, os.Stdout, "Do you want to continue?")
	if err != nil {
		Logger.Errorf("Failed to read response: %v", err)
		return false
	}
	return ok
}

var rotateCmd = &cobra.Command{
	Use:   "rotate-key [ARTIFACTS...]",
	Short: "Replaces the key and re-encrypts every artifact under it",
	Long: `Generates a new key and re-encrypts artifacts from the old key to the new one.

The new key is first stored as <key>.next. If any artifact fails, the ones
already rotated are rotated back and the old key stays in place. On success
the old key is retired according to --old-key-policy (or old_key_policy in
the project config) and the key file is replaced.

Rotation needs a key file; keys from stdin or ENVAULT_KEY are refused
because the new key would have nowhere to go.

Examples:
  envault rotate-key
  envault rotate-key --force --old-key-policy delete`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting rotate-key command")
		spinner, cleanup := startSpinner("Rotating key...")
		defer cleanup()

		if rotateKey == "-" {
			return fail(spinner, fmt.Errorf("%w: rotate-key cannot take its key from stdin", kerrors.ErrInvalidArguments))
		}
		common, err := keyFlagOptions(rotateKey)
		if err != nil {
			return fail(spinner, err)
		}

		if !rotateForce {
			if !utils.IsTerminal() {
				return fail(spinner, fmt.Errorf("%w: stdin is not a terminal, use --force to rotate without confirmation", kerrors.ErrInvalidArguments))
			}
			if !confirmRotate(spinner) {
				spinner.FinalMSG = ui.Warning.Sprint("⚠") + " Key rotation cancelled."
				return nil
			}
		}

		result, err := workflows.Rotate(context.Background(), workflows.RotateOptions{
			CommonOptions: common,
			FilePatterns:  args,
			OldKeyPolicy:  rotateOldKeyPolicy,
		})
		if err != nil {
			return fail(spinner, err)
		}

		Logger.Infof("Key rotation completed successfully. Rotated %d artifacts", len(result.Artifacts))
		finalMessage := ui.Done("Key rotated, %d artifacts re-encrypted with %s", len(result.Artifacts), ui.Highlight.Sprint(result.Cipher)) + "\n" +
			"    New key: " + ui.Path.Sprint(result.KeyPath) + "\n"
		if result.RetiredKeyPath != "" {
			finalMessage += "    Old key: " + ui.Path.Sprint(result.RetiredKeyPath) + "\n"
		} else {
			finalMessage += "    Old key: " + ui.Muted.Sprint("deleted") + "\n"
		}
		finalMessage += ui.Hint("Commit the re-encrypted artifacts and update %s wherever it is set", ui.Code.Sprint(workflows.KeyEnvVar))
		spinner.FinalMSG = finalMessage
		return nil
	},
}

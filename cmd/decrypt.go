package cmd

import (
	"context"

	"github.com/PolarWolf314/envault/internal/ui"
	"github.com/PolarWolf314/envault/internal/utils"
	"github.com/PolarWolf314/envault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	decryptKey    string
	decryptOutput string
	decryptDryRun bool
)

func init() {
	decryptCmd.Flags().StringVar(&decryptKey, "key", "", "key file, or - to read a base64 key from stdin")
	decryptCmd.Flags().StringVarP(&decryptOutput, "out", "o", "", "plaintext path (only with a single artifact)")
	decryptCmd.Flags().BoolVar(&decryptDryRun, "dry-run", false, "show which files would be decrypted")
}

func resetDecryptCommandState() {
	decryptKey = ""
	decryptOutput = ""
	decryptDryRun = false
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt [ARTIFACTS...]",
	Short: "Decrypts .env.envault artifacts back into .env files",
	Long: `Decrypts artifacts with the project key.

Artifacts may be files, directories or glob patterns. With none, every
artifact in the project is decrypted. The plaintext is written next to the
artifact with the .envault suffix removed, unless --out names it. An
artifact that fails authentication never produces a plaintext file.

Examples:
  envault decrypt
  envault decrypt .env.production.envault --out /run/app/.env
  ENVAULT_KEY="$KEY" envault decrypt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")
		spinner, cleanup := startSpinner("Decrypting environment files...")
		defer cleanup()

		common, err := keyFlagOptions(decryptKey)
		if err != nil {
			return fail(spinner, err)
		}

		result, err := workflows.Decrypt(context.Background(), workflows.DecryptOptions{
			CommonOptions: common,
			FilePatterns:  args,
			Output:        decryptOutput,
			DryRun:        decryptDryRun,
		})
		if err != nil {
			return fail(spinner, err)
		}

		if result.DryRun {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " Dry run: these files would be decrypted:" +
				utils.FormatPaths(result.SourceFiles)
			return nil
		}

		Logger.Infof("Decrypt command completed successfully. Wrote %d files", len(result.DecryptedFiles))
		spinner.FinalMSG = ui.Done("Environment files decrypted") + "\n" +
			"The following files were created: " + utils.FormatPaths(result.DecryptedFiles) +
			ui.Warning.Sprint("⚠") + " Never commit plaintext " + ui.Path.Sprint(".env") + " files"
		return nil
	},
}

package cmd

import (
	"context"

	"github.com/PolarWolf314/envault/internal/ui"
	"github.com/PolarWolf314/envault/internal/utils"
	"github.com/PolarWolf314/envault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	encryptKey          string
	encryptOutput       string
	encryptRemoveSource bool
	encryptDryRun       bool
)

func init() {
	encryptCmd.Flags().StringVar(&encryptKey, "key", "", "key file, or - to read a base64 key from stdin")
	encryptCmd.Flags().StringVarP(&encryptOutput, "out", "o", "", "artifact path (only with a single source)")
	encryptCmd.Flags().BoolVar(&encryptRemoveSource, "remove-source", false, "delete each plaintext after its artifact is written")
	encryptCmd.Flags().BoolVar(&encryptDryRun, "dry-run", false, "show which files would be encrypted")
}

func resetEncryptCommandState() {
	encryptKey = ""
	encryptOutput = ""
	encryptRemoveSource = false
	encryptDryRun = false
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt [SOURCES...]",
	Short: "Encrypts .env files into .env.envault artifacts",
	Long: `Encrypts plaintext .env files with the project key.

Sources may be files, directories or glob patterns (** is supported). With
none, every .env file in the project is encrypted. Each source is sealed
into <source>.envault unless --out names the artifact.

The key is taken from --key, then the ENVAULT_KEY environment variable,
then the project key file.

Examples:
  envault encrypt
  envault encrypt .env.production --out deploy/.env.envault
  envault encrypt "services/**/.env" --remove-source
  echo "$KEY" | envault encrypt --key - .env`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")
		spinner, cleanup := startSpinner("Encrypting environment files...")
		defer cleanup()

		common, err := keyFlagOptions(encryptKey)
		if err != nil {
			return fail(spinner, err)
		}

		result, err := workflows.Encrypt(context.Background(), workflows.EncryptOptions{
			CommonOptions: common,
			FilePatterns:  args,
			Output:        encryptOutput,
			RemoveSource:  encryptRemoveSource,
			DryRun:        encryptDryRun,
		})
		if err != nil {
			return fail(spinner, err)
		}

		if result.DryRun {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " Dry run: these files would be encrypted:" +
				utils.FormatPaths(result.SourceFiles)
			return nil
		}

		Logger.Infof("Encrypt command completed successfully. Created %d artifacts", len(result.EncryptedFiles))
		finalMessage := ui.Done("Environment files encrypted with %s", ui.Highlight.Sprint(result.Cipher)) + "\n" +
			"The following files were created: " + utils.FormatPaths(result.EncryptedFiles)
		if result.SourcesRemoved {
			finalMessage += ui.Info.Sprint("ℹ") + " Plaintext sources were removed\n"
		}
		finalMessage += ui.Hint("You can now safely commit all %s files to version control", ui.Path.Sprint(".envault"))
		spinner.FinalMSG = finalMessage
		return nil
	},
}

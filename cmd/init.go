package cmd

import (
	"context"

	"github.com/PolarWolf314/envault/internal/ui"
	"github.com/PolarWolf314/envault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	initProjectName string
	initCipher      string
	initKeyPath     string
)

func init() {
	initCmd.Flags().StringVarP(&initProjectName, "name", "n", "", "project name (defaults to the directory name)")
	initCmd.Flags().StringVar(&initCipher, "cipher", "", "cipher for new artifacts (xsalsa20-poly1305, xchacha20-poly1305 or aes-256-gcm)")
	initCmd.Flags().StringVar(&initKeyPath, "key", "", "store the project key at this path instead of the data directory")
}

func resetInitCommandState() {
	initProjectName = ""
	initCipher = ""
	initKeyPath = ""
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initializes envault in the current directory",
	Long: `Creates .envault/config.toml with default settings and a fresh project
UUID, and generates the project key if it does not exist yet.

Examples:
  envault init
  envault init --name api --cipher xchacha20-poly1305
  envault init --key ./ci/project.key`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")
		spinner, cleanup := startSpinner("Initializing envault...")
		defer cleanup()

		result, err := workflows.Init(context.Background(), workflows.InitOptions{
			ProjectName: initProjectName,
			Cipher:      initCipher,
			KeyPath:     initKeyPath,
			Logger:      Logger,
		})
		if err != nil {
			return fail(spinner, err)
		}

		keyLine := "Generated project key at " + ui.Path.Sprint(result.KeyPath)
		if !result.KeyCreated {
			keyLine = "Reusing existing key at " + ui.Path.Sprint(result.KeyPath)
		}

		spinner.FinalMSG = ui.Done("envault initialized for %s", ui.Highlight.Sprint(result.ProjectName)) + "\n" +
			"    " + keyLine + "\n" +
			ui.Hint("Commit %s and keep the key out of version control", ui.Path.Sprint(".envault/config.toml")) + "\n" +
			ui.Hint("Run %s to encrypt your .env files", ui.Code.Sprint("envault encrypt"))
		return nil
	},
}

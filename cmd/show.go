package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/envault/internal/ui"
	"github.com/PolarWolf314/envault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	showKey    string
	showRedact []string
)

func init() {
	showCmd.Flags().StringVar(&showKey, "key", "", "key file, or - to read a base64 key from stdin")
	showCmd.Flags().StringArrayVar(&showRedact, "redact", nil, "additional variable name to redact (repeatable)")
}

func resetShowCommandState() {
	showKey = ""
	showRedact = nil
}

var showCmd = &cobra.Command{
	Use:   "show ARTIFACT",
	Short: "Prints the variables of an artifact with sensitive values redacted",
	Long: `Decrypts an artifact in memory and prints its variables as sorted
KEY=VALUE lines. Names listed under [redaction] in the project config, plus
any given with --redact, are replaced by the placeholder. Nothing is
written to disk.

Examples:
  envault show .env.envault
  envault show .env.production.envault --redact database_url`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting show command")

		common, err := keyFlagOptions(showKey)
		if err != nil {
			fmt.Println(formatError(err))
			return reportedError{err}
		}

		result, err := workflows.Show(context.Background(), workflows.ShowOptions{
			CommonOptions: common,
			Artifact:      args[0],
			Redact:        showRedact,
		})
		if err != nil {
			fmt.Println(formatError(err))
			return reportedError{err}
		}

		for _, v := range result.Variables {
			value := v.Value
			if v.Redacted {
				value = ui.Muted.Sprint(value)
			}
			fmt.Printf("%s=%s\n", v.Name, value)
		}
		Logger.Infof("Showed %d variables, %d redacted", len(result.Variables), result.RedactedCount)
		return nil
	},
}

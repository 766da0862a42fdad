package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/PolarWolf314/envault/internal/audit"
	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/ui"
	"github.com/PolarWolf314/envault/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit      int
	logNewest     bool
	logUser       string
	logOperations []string
	logFile       string
	logSince      string
	logUntil      string
	logOneline    bool
	logJSON       bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "show only the last N matching entries")
	logCmd.Flags().BoolVar(&logNewest, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logUser, "user", "", "filter by user email or username")
	logCmd.Flags().StringSliceVar(&logOperations, "op", nil, "filter by operation (repeatable or comma-separated)")
	logCmd.Flags().StringVarP(&logFile, "file", "f", "", "filter by a plaintext or artifact path")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries on or after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries on or before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "one summary line per entry")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

func resetLogCommandState() {
	logLimit = 0
	logNewest = false
	logUser = ""
	logOperations = nil
	logFile = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the project's audit trail",
	Long: `Shows which envault operations ran against this project, who ran them
and which artifacts and keys they touched.

Examples:
  envault log                             # Every entry with its details
  envault log -n 10 --reverse             # Ten most recent entries
  envault log --file .env.production      # History of one environment file
  envault log --op rotate-key             # Key rotations and retired keys
  envault log --since 2024-01-01 --oneline
  envault log --json`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	spinner, cleanup := startSpinner("Reading audit log...")
	defer cleanup()

	result, err := workflows.Log(context.Background(), workflows.LogOptions{
		Limit:       logLimit,
		NewestFirst: logNewest,
		User:        logUser,
		Operations:  logOperations,
		File:        logFile,
		Since:       logSince,
		Until:       logUntil,
	})
	if err != nil {
		if errors.Is(err, kerrors.ErrNoFilesFound) {
			spinner.FinalMSG = ui.Hint("Nothing has been logged for this project yet")
			return nil
		}
		return fail(spinner, err)
	}

	Logger.Debugf("%d of %d audit entries matched", len(result.Entries), result.Total)

	if len(result.Entries) == 0 {
		spinner.FinalMSG = ui.Hint("No audit entries match the given filters")
		return nil
	}

	cleanup()

	switch {
	case logJSON:
		data, err := json.MarshalIndent(result.Entries, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding audit entries: %w", err)
		}
		fmt.Println(string(data))
	case logOneline:
		for _, e := range result.Entries {
			fmt.Printf("%s %s %s %s\n",
				workflows.FormatTimestamp(e, "2006-01-02"), e.User, e.Operation,
				workflows.Summarize(e, result.ProjectPath))
		}
	default:
		for i, e := range result.Entries {
			if i > 0 {
				fmt.Println()
			}
			printLogEntry(e, result.ProjectPath)
		}
	}
	return nil
}

// printLogEntry writes a header line followed by the entry's key, cipher and
// details, one per line.
func printLogEntry(e audit.Entry, projectPath string) {
	fmt.Printf("%s  %s  %s\n",
		workflows.FormatTimestamp(e, "2006-01-02 15:04:05"),
		e.User,
		ui.Success.Sprint(e.Operation))

	field := func(name, value string) {
		if value != "" {
			fmt.Printf("    %-15s %s\n", name+":", value)
		}
	}
	field("summary", workflows.Summarize(e, projectPath))
	field("host", e.Host)
	field("key", e.KeyPath)
	field("cipher", e.Cipher)

	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		field(k, e.Details[k])
	}
}

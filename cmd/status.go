package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/PolarWolf314/envault/internal/ui"
	"github.com/PolarWolf314/envault/internal/vault"
	"github.com/PolarWolf314/envault/internal/workflows"

	"github.com/spf13/cobra"
)

var statusJSONOutput bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSONOutput, "json", false, "output in JSON format")
}

func resetStatusCommandState() {
	statusJSONOutput = false
}

type statusFileJSON struct {
	Path           string   `json:"path"`
	State          string   `json:"state"`
	Status         string   `json:"status"`
	PlaintextMtime string   `json:"plaintext_mtime,omitempty"`
	EncryptedMtime string   `json:"encrypted_mtime,omitempty"`
	StaleTemps     []string `json:"stale_temps,omitempty"`
}

type statusJSON struct {
	ProjectName string                  `json:"project"`
	Files       []statusFileJSON        `json:"files"`
	Summary     workflows.StatusSummary `json:"summary"`
}

var statusCmd = &cobra.Command{
	Use:   "status [FILES...]",
	Short: "Shows the state of every .env file and its artifact",
	Long: `Shows the state of .env files and .env.envault artifacts in the project.

States:
  - plain:         only the plaintext exists
  - encrypted:     an artifact exists
  - transitioning: another envault operation holds the artifact's lock
  - missing:       neither exists (only for files named on the command line)

An encrypted file is also marked stale when its plaintext was modified
after it was sealed. Leftover temp files from interrupted writes are listed.

Use --json for machine-readable output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")

		result, err := workflows.Status(context.Background(), workflows.StatusOptions{Files: args})
		if err != nil {
			fmt.Println(formatError(err))
			return reportedError{err}
		}

		if statusJSONOutput {
			return outputStatusJSON(result)
		}

		printStatusTable(result)
		return nil
	},
}

// outputStatusJSON outputs the result as JSON.
func outputStatusJSON(result *workflows.StatusResult) error {
	out := statusJSON{
		ProjectName: result.ProjectName,
		Files:       make([]statusFileJSON, 0, len(result.Files)),
		Summary:     result.Summary,
	}
	for _, f := range result.Files {
		out.Files = append(out.Files, statusFileJSON{
			Path:           f.Path,
			State:          f.State.String(),
			Status:         string(f.Status),
			PlaintextMtime: f.PlaintextMtime,
			EncryptedMtime: f.EncryptedMtime,
			StaleTemps:     f.StaleTemps,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// printStatusTable prints a formatted table of file statuses.
func printStatusTable(result *workflows.StatusResult) {
	fmt.Printf("Project: %s\n", ui.Highlight.Sprint(result.ProjectName))
	fmt.Println()

	if len(result.Files) == 0 {
		fmt.Println(ui.Success.Sprint("✓") + " No environment files found.")
		return
	}

	// Calculate column width for file path.
	pathWidth := 30
	for _, file := range result.Files {
		if len(file.Path) > pathWidth {
			pathWidth = len(file.Path)
		}
	}
	if pathWidth > 60 {
		pathWidth = 60
	}

	fmt.Printf("  %-*s  %s\n", pathWidth, "FILE", "STATE")

	for _, file := range result.Files {
		displayPath := file.Path
		if len(displayPath) > pathWidth {
			displayPath = "..." + displayPath[len(displayPath)-pathWidth+3:]
		}
		fmt.Printf("  %-*s  %s\n", pathWidth, displayPath, describeFile(file))
		for _, tmp := range file.StaleTemps {
			fmt.Printf("  %-*s  %s\n", pathWidth, "", ui.Muted.Sprint("leftover "+tmp))
		}
	}

	fmt.Println()
	fmt.Println("Summary:")

	s := result.Summary
	if s.Current > 0 {
		fmt.Printf("  %d file(s) up to date\n", s.Current)
	}
	if s.Stale > 0 {
		fmt.Printf("  %d file(s) stale (run '%s' to update)\n", s.Stale, ui.Code.Sprint("envault encrypt"))
	}
	if s.Unencrypted > 0 {
		fmt.Printf("  %d file(s) not encrypted (run '%s' to secure)\n", s.Unencrypted, ui.Code.Sprint("envault encrypt"))
	}
	if s.EncryptedOnly > 0 {
		fmt.Printf("  %d file(s) encrypted only (plaintext removed, this is normal)\n", s.EncryptedOnly)
	}
	if s.Transitioning > 0 {
		fmt.Printf("  %d file(s) locked by a running operation\n", s.Transitioning)
	}
	if s.Missing > 0 {
		fmt.Printf("  %d file(s) missing\n", s.Missing)
	}
}

func describeFile(file workflows.FileStatusInfo) string {
	switch file.State {
	case vault.Transitioning:
		return ui.Warning.Sprint("⟳") + " transitioning (locked by another operation)"
	case vault.Missing:
		return ui.Error.Sprint("✗") + " missing"
	}

	switch file.Status {
	case workflows.StatusCurrent:
		return ui.Success.Sprint("✓") + " encrypted (up to date)"
	case workflows.StatusStale:
		return ui.Warning.Sprint("⚠") + " encrypted, stale (plaintext modified after encryption)"
	case workflows.StatusUnencrypted:
		return ui.Error.Sprint("✗") + " plain (not encrypted)"
	case workflows.StatusEncryptedOnly:
		return ui.Muted.Sprint("◌") + " encrypted only (no plaintext)"
	default:
		return file.State.String()
	}
}

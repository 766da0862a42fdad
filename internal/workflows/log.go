package workflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/PolarWolf314/envault/internal/audit"
	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/secrets"
	"github.com/PolarWolf314/envault/internal/utils"
)

const logDateLayout = "2006-01-02"

// LogOptions configures the log workflow.
type LogOptions struct {
	// Limit keeps only the newest N matching entries. 0 keeps all.
	Limit int

	// NewestFirst orders entries from most recent to oldest.
	NewestFirst bool

	// User matches the entry's email or OS username, case-insensitively.
	User string

	// Operations keeps entries whose op is in the list.
	Operations []string

	// File keeps entries that touched this plaintext or artifact. Relative
	// paths are taken from the project root.
	File string

	// Since and Until bound the entry date, inclusive, as YYYY-MM-DD.
	Since string
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the matching audit entries, oldest first unless
	// NewestFirst was set.
	Entries []audit.Entry

	// Total is the number of entries in the log before filtering.
	Total int

	// ProjectPath is the project root, for rendering paths relative to it.
	ProjectPath string
}

// entryFilter reports whether an entry should be kept.
type entryFilter func(audit.Entry) bool

// Log reads the project's audit log and returns the entries matching opts.
//
// Returns ErrProjectNotInitialized if the project has no .envault directory.
// Returns ErrNoFilesFound if nothing has been logged yet.
// Returns ErrInvalidDateFormat if Since or Until is not YYYY-MM-DD.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	p, err := loadProject(false)
	if err != nil {
		return nil, err
	}

	filters, err := opts.filters(p.path)
	if err != nil {
		return nil, err
	}

	logPath := audit.LogPath()
	exists, err := utils.FileExists(logPath)
	if err != nil {
		return nil, fmt.Errorf("checking audit log: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNoFilesFound, logPath)
	}

	entries, err := audit.ReadEntries()
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	result := &LogResult{Total: len(entries), ProjectPath: p.path}
	for _, e := range entries {
		if matchesAll(e, filters) {
			result.Entries = append(result.Entries, e)
		}
	}

	if opts.Limit > 0 && len(result.Entries) > opts.Limit {
		result.Entries = result.Entries[len(result.Entries)-opts.Limit:]
	}
	if opts.NewestFirst {
		for i, j := 0, len(result.Entries)-1; i < j; i, j = i+1, j-1 {
			result.Entries[i], result.Entries[j] = result.Entries[j], result.Entries[i]
		}
	}
	return result, nil
}

func (opts LogOptions) filters(projectPath string) ([]entryFilter, error) {
	var filters []entryFilter

	if opts.User != "" {
		filters = append(filters, func(e audit.Entry) bool {
			return strings.EqualFold(e.User, opts.User)
		})
	}

	if len(opts.Operations) > 0 {
		ops := make(map[string]bool, len(opts.Operations))
		for _, op := range opts.Operations {
			if op = strings.ToLower(strings.TrimSpace(op)); op != "" {
				ops[op] = true
			}
		}
		filters = append(filters, func(e audit.Entry) bool {
			return ops[strings.ToLower(e.Operation)]
		})
	}

	if opts.File != "" {
		target := opts.File
		if !filepath.IsAbs(target) {
			target = filepath.Join(projectPath, target)
		}
		target = secrets.PlainPath(filepath.Clean(target))
		filters = append(filters, func(e audit.Entry) bool {
			for _, f := range e.Files {
				if secrets.PlainPath(filepath.Clean(f)) == target {
					return true
				}
			}
			return false
		})
	}

	if opts.Since != "" {
		since, err := time.Parse(logDateLayout, opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since %q, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat, opts.Since)
		}
		filters = append(filters, func(e audit.Entry) bool {
			t, ok := entryTime(e)
			return ok && !t.Before(since)
		})
	}

	if opts.Until != "" {
		until, err := time.Parse(logDateLayout, opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until %q, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat, opts.Until)
		}
		end := until.AddDate(0, 0, 1)
		filters = append(filters, func(e audit.Entry) bool {
			t, ok := entryTime(e)
			return ok && t.Before(end)
		})
	}

	return filters, nil
}

func matchesAll(e audit.Entry, filters []entryFilter) bool {
	for _, keep := range filters {
		if !keep(e) {
			return false
		}
	}
	return true
}

func entryTime(e audit.Entry) (time.Time, bool) {
	for _, layout := range []string{audit.TimestampFormat, time.RFC3339Nano} {
		if t, err := time.Parse(layout, e.Timestamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders an entry's timestamp with layout, falling back to
// the raw value when it cannot be parsed.
func FormatTimestamp(e audit.Entry, layout string) string {
	if t, ok := entryTime(e); ok {
		return t.Format(layout)
	}
	return e.Timestamp
}

// Summarize describes what an entry did in one line, for example
// "2 artifacts, xchacha20-poly1305" or "old key retained at ...". Paths
// under projectPath are shown relative to it.
func Summarize(e audit.Entry, projectPath string) string {
	files := relativeFiles(e.Files, projectPath)

	var parts []string
	switch e.Operation {
	case "encrypt", "decrypt":
		parts = append(parts, countOrList(files, "file"))
		if e.Cipher != "" {
			parts = append(parts, e.Cipher)
		}
	case "rotate-key":
		parts = append(parts, countOrList(files, "artifact"))
		if retired := e.Details["retired_key"]; retired != "" {
			parts = append(parts, "old key retained at "+retired)
		} else if e.Details["old_key_policy"] == "delete" {
			parts = append(parts, "old key deleted")
		}
	case "show":
		parts = append(parts, countOrList(files, "artifact"))
		if n := e.Details["redacted"]; n != "" && n != "0" {
			parts = append(parts, n+" redacted")
		}
	case "init":
		parts = append(parts, e.ProjectName)
		if e.Cipher != "" {
			parts = append(parts, e.Cipher)
		}
	case "keygen":
		parts = append(parts, e.KeyPath)
	}

	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func relativeFiles(files []string, projectPath string) []string {
	if projectPath == "" {
		return files
	}
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = relativeTo(projectPath, f)
	}
	return out
}

func countOrList(files []string, noun string) string {
	switch {
	case len(files) == 0:
		return ""
	case len(files) <= 2:
		return strings.Join(files, ", ")
	default:
		return fmt.Sprintf("%d %ss", len(files), noun)
	}
}

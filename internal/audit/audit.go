package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/envault/internal/configs"
	"github.com/PolarWolf314/envault/internal/redact"
	"github.com/PolarWolf314/envault/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TimestampFormat is RFC3339 in UTC with microseconds.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`             // RFC3339 with microseconds.
	ID        string `json:"id,omitempty"`   // Unique per entry.
	User      string `json:"user"`           // Email, or the OS username.
	UserUUID  string `json:"uuid,omitempty"` // UUID of user performing action.
	Host      string `json:"host,omitempty"`
	Operation string `json:"op"` // Operation name.

	// Optional fields depending on operation.
	Files       []string          `json:"files,omitempty"`        // For encrypt/decrypt/rotate.
	KeyPath     string            `json:"key_path,omitempty"`     // Key used or written.
	Cipher      string            `json:"cipher,omitempty"`       // For encrypt/rotate.
	ProjectName string            `json:"project_name,omitempty"` // For init.
	ProjectUUID string            `json:"project_uuid,omitempty"` // For init.
	Details     map[string]string `json:"details,omitempty"`
}

func (e Entry) fields() logrus.Fields {
	f := logrus.Fields{
		"ts":   e.Timestamp,
		"user": e.User,
	}
	optional := map[string]string{
		"id":           e.ID,
		"uuid":         e.UserUUID,
		"host":         e.Host,
		"key_path":     e.KeyPath,
		"cipher":       e.Cipher,
		"project_name": e.ProjectName,
		"project_uuid": e.ProjectUUID,
	}
	for k, v := range optional {
		if v != "" {
			f[k] = v
		}
	}
	if len(e.Files) > 0 {
		f["files"] = e.Files
	}
	if len(e.Details) > 0 {
		f["details"] = e.Details
	}
	return f
}

// newLogger writes one JSON object per line. The entry's operation is the
// message, stored under "op".
func newLogger(out *os.File, set redact.Set) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		DisableTimestamp: true,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg: "op",
		},
	})
	l.AddHook(redact.NewHook(set))
	return l
}

func redactionSet() redact.Set {
	if configs.GlobalProjectConfig != nil {
		return configs.GlobalProjectConfig.RedactionSet()
	}
	return redact.NewSet(redact.DefaultNames...)
}

// Log appends an entry to the audit log.
// If logging fails, it does not return an error.
// Operations should not fail just because audit logging failed.
func Log(entry Entry) {
	logPath := LogPath()
	if logPath == "" {
		// Project not initialized, skip logging.
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	// #nosec G306 -- audit log should be readable by team members.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	newLogger(f, redactionSet()).WithFields(entry.fields()).Info(entry.Operation)
}

// LogWithUser is a convenience function that populates user fields from config.
func LogWithUser(op string) Entry {
	entry := Entry{Operation: op}

	if host, err := utils.GetHostname(); err == nil {
		entry.Host = host
	}
	if configs.UserEnvaultSettings != nil {
		entry.User = configs.UserEnvaultSettings.Username
	}

	userConfig, err := configs.LoadUserConfig()
	if err != nil {
		return entry
	}

	if userConfig.User.Email != "" {
		entry.User = userConfig.User.Email
	}
	entry.UserUUID = userConfig.User.UUID

	return entry
}

// LogPath returns the path to the audit log file.
// Returns empty string if project is not initialized.
func LogPath() string {
	settings := configs.ProjectEnvaultSettings
	if settings == nil {
		return ""
	}
	if settings.AuditLogPath != "" {
		return settings.AuditLogPath
	}
	if settings.ProjectPath == "" {
		return ""
	}
	return filepath.Join(settings.ProjectPath, utils.ProjectDirName, "audit.jsonl")
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// Package audit provides audit trail logging for envault operations.
//
// Every significant operation (init, encrypt, decrypt, rotate-key, etc.)
// is recorded in a project-level audit log. This provides accountability
// and helps teams understand who touched which configuration and when.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at:
//
//	.envault/audit.jsonl
//
// Entries are written through a logrus JSON formatter. Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC) and a unique id
//   - User email (or OS username), UUID and host
//   - Operation name
//   - Operation-specific details (files, key path, cipher, etc.)
//
// Field names in the project's redaction set are replaced with the
// redaction placeholder before the entry is written, including keys of the
// details map.
//
// # Usage
//
// Create an entry with user info pre-populated:
//
//	entry := audit.LogWithUser("encrypt")
//	entry.Files = encryptedFiles
//	audit.Log(entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error. Operations should never
// fail just because audit logging failed.
//
// # Reading Logs
//
// Use ReadEntries() to parse the audit log for display or analysis.
// Malformed entries are silently skipped to handle partial writes.
package audit

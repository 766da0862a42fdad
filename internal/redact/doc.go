// Package redact hides sensitive values before records reach a log or a
// telemetry sink.
//
// A Set holds field names compared case-insensitively. Apply returns a copy
// of a record with the values of matching fields replaced by a placeholder:
//
//	set := redact.NewSet("cookie", "x-csrf-token")
//	clean := redact.Apply(map[string]string{"Cookie": "abc", "path": "/"}, set)
//	// clean: {"Cookie": "<redacted>", "path": "/"}
//
// ApplyHeader does the same for http.Header values, and Hook plugs a Set
// into a logrus logger so every entry's fields are filtered before they are
// formatted.
package redact

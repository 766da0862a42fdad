package redact

import (
	"github.com/sirupsen/logrus"
)

// Hook redacts entry fields on every logrus level.
type Hook struct {
	Set Set
}

// NewHook returns a hook filtering fields named in set.
func NewHook(set Set) *Hook {
	return &Hook{Set: set}
}

// Levels implements logrus.Hook.
func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook. Only top-level fields are inspected; nested
// string maps are filtered with Apply.
func (h *Hook) Fire(entry *logrus.Entry) error {
	for k, v := range entry.Data {
		if h.Set.Contains(k) {
			entry.Data[k] = h.Set.Placeholder()
			continue
		}
		if m, ok := v.(map[string]string); ok {
			entry.Data[k] = Apply(m, h.Set)
		}
	}
	return nil
}

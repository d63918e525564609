package config

import "slices"

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged   bool
	NewLogLevel       LogLevel
	WordsChanged      bool
	NewWords          []string
	FocusLimitChanged bool
	NewFocusLimit     int
}

// HasChanges reports whether any hot-reloadable field changed.
func (d ConfigDiff) HasChanges() bool {
	return d.LogLevelChanged || d.WordsChanged || d.FocusLimitChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart: provider and
// storage changes require a restart and are ignored here.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if !slices.Equal(old.Practice.Words, new.Practice.Words) {
		d.WordsChanged = true
		d.NewWords = slices.Clone(new.Practice.Words)
	}

	if old.Practice.FocusLimit != new.Practice.FocusLimit {
		d.FocusLimitChanged = true
		d.NewFocusLimit = new.Practice.FocusLimit
	}

	return d
}

package config

import "execmind/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"` // debug, info, warn, error
	Format     string          `yaml:"format" validate:"omitempty,oneof=json text"`                    // json, text
	DebugMode  bool            `yaml:"debug_mode"`                                                     // false = no log files
	Categories map[string]bool `yaml:"categories"`                                                     // unlisted categories stay on
}

// IsJSON reports whether log files should be structured JSON.
func (c *LoggingConfig) IsJSON() bool {
	return c.Format == "json"
}

// Options converts the section for logging.Initialize. force turns on
// debug mode regardless of the file (the --verbose flag).
func (c *LoggingConfig) Options(force bool) logging.Options {
	return logging.Options{
		DebugMode:  c.DebugMode || force,
		Level:      c.Level,
		JSONFormat: c.IsJSON(),
		Categories: c.Categories,
	}
}

package config

import (
	"fmt"
	"slices"
	"strings"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
	logOutputs = []string{"stdout", "stderr"}
	ginModes   = []string{"debug", "release", "test"}
)

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is json or console.
	Format string
	// Output is stdout or stderr.
	Output string
}

// LoadLoggerConfigFromEnv loads logger configuration from LOG_* variables.
func LoadLoggerConfigFromEnv() LoggerConfig {
	return LoggerConfig{
		Level:  GetEnv("LOG_LEVEL", "info"),
		Format: GetEnv("LOG_FORMAT", "json"),
		Output: GetEnv("LOG_OUTPUT", "stdout"),
	}
}

// Validate validates logger configuration.
func (c LoggerConfig) Validate() error {
	if err := oneOf("log level", c.Level, logLevels); err != nil {
		return err
	}
	if err := oneOf("log format", c.Format, logFormats); err != nil {
		return err
	}
	return oneOf("log output", c.Output, logOutputs)
}

// IsProduction reports whether the logger should use zap's production preset.
func (c LoggerConfig) IsProduction() bool {
	return c.Format == "json" && c.Level != "debug"
}

func oneOf(name, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("invalid %s: %q (must be: %s)", name, value, strings.Join(allowed, ", "))
}

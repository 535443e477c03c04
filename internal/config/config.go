// Package config loads service configuration from the environment.
package config

import "fmt"

// Config holds application configuration.
type Config struct {
	// Server holds HTTP server configuration.
	Server ServerConfig
	// Logger holds logger configuration.
	Logger LoggerConfig
	// Forge holds code-forge API configuration.
	Forge ForgeConfig
	// GinMode is the Gin framework mode (debug, release, test).
	GinMode string
}

// LoadFromEnv loads all configuration from environment variables.
func LoadFromEnv() Config {
	return Config{
		Server:  LoadServerConfigFromEnv(),
		Logger:  LoadLoggerConfigFromEnv(),
		Forge:   LoadForgeConfigFromEnv(),
		GinMode: GetEnv("GIN_MODE", "release"),
	}
}

// Validate validates all configuration.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config validation failed: %w", err)
	}

	if err := c.Forge.Validate(); err != nil {
		return fmt.Errorf("forge config validation failed: %w", err)
	}

	return oneOf("GIN_MODE", c.GinMode, ginModes)
}

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/festy23/stagebot/pkg/retry"
)

// ForgeConfig holds code-forge API configuration.
type ForgeConfig struct {
	// Token is the API token used for every forge call.
	Token string
	// BaseURL overrides the REST endpoint (GitHub Enterprise or tests). Empty means api.github.com.
	BaseURL string
	// Org is the organization owning the privileged reviewer team.
	Org string
	// CoreTeam is the display name of the privileged reviewer team, matched case-insensitively.
	CoreTeam string
	// Timeout bounds every HTTP round trip to the forge.
	Timeout time.Duration
	// MaxIdleConns caps idle keep-alive connections to the forge. Zero keeps the transport default.
	MaxIdleConns int
	// IdleConnTimeout closes keep-alive connections idle for longer than this.
	IdleConnTimeout time.Duration
	// Preflight controls the startup reachability check.
	Preflight retry.Config
}

// LoadForgeConfigFromEnv loads forge configuration from environment variables.
func LoadForgeConfigFromEnv() ForgeConfig {
	preflight := retry.ForgeConfig()
	preflight.MaxAttempts = GetEnvInt("FORGE_PREFLIGHT_MAX_ATTEMPTS", preflight.MaxAttempts)
	preflight.InitialDelay = GetEnvDuration("FORGE_PREFLIGHT_INITIAL_DELAY", preflight.InitialDelay)
	preflight.MaxDelay = GetEnvDuration("FORGE_PREFLIGHT_MAX_DELAY", preflight.MaxDelay)
	preflight.Multiplier = GetEnvFloat("FORGE_PREFLIGHT_MULTIPLIER", preflight.Multiplier)

	return ForgeConfig{
		Token:     GetEnvFirst([]string{"FORGE_TOKEN", "GH_TOKEN", "GITHUB_TOKEN"}, ""),
		BaseURL:   GetEnv("FORGE_BASE_URL", ""),
		Org:       GetEnv("FORGE_ORG", "python"),
		CoreTeam:  GetEnv("FORGE_CORE_TEAM", "python core"),
		Timeout:   GetEnvDuration("FORGE_TIMEOUT", 10*time.Second),
		Preflight: preflight,

		MaxIdleConns:    GetEnvInt("FORGE_MAX_IDLE_CONNS", 10),
		IdleConnTimeout: GetEnvDuration("FORGE_IDLE_CONN_TIMEOUT", 90*time.Second),
	}
}

// Validate validates forge configuration.
func (c ForgeConfig) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("forge token not found: set FORGE_TOKEN, GH_TOKEN or GITHUB_TOKEN")
	}
	if c.Org == "" {
		return fmt.Errorf("FORGE_ORG must not be empty")
	}
	if c.CoreTeam == "" {
		return fmt.Errorf("FORGE_CORE_TEAM must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("FORGE_TIMEOUT must be greater than 0")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid FORGE_BASE_URL: %q", c.BaseURL)
		}
	}
	if c.MaxIdleConns < 0 {
		return fmt.Errorf("FORGE_MAX_IDLE_CONNS must be non-negative")
	}
	if c.IdleConnTimeout < 0 {
		return fmt.Errorf("FORGE_IDLE_CONN_TIMEOUT must be non-negative")
	}
	if c.Preflight.MaxAttempts <= 0 {
		return fmt.Errorf("FORGE_PREFLIGHT_MAX_ATTEMPTS must be greater than 0")
	}
	return nil
}

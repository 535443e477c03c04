package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	appConfig "github.com/festy23/stagebot/internal/config"
)

func TestNew(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("LOG_OUTPUT", "stderr")

	logger, err := New()
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestNewWithConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      appConfig.LoggerConfig
		enabled  zapcore.Level
		disabled *zapcore.Level
	}{
		{
			name:    "production json info",
			cfg:     appConfig.LoggerConfig{Level: "info", Format: "json", Output: "stdout"},
			enabled: zapcore.InfoLevel,
			disabled: func() *zapcore.Level {
				l := zapcore.DebugLevel
				return &l
			}(),
		},
		{
			name:    "development console debug",
			cfg:     appConfig.LoggerConfig{Level: "debug", Format: "console", Output: "stdout"},
			enabled: zapcore.DebugLevel,
		},
		{
			name:    "warn level hides info",
			cfg:     appConfig.LoggerConfig{Level: "warn", Format: "json", Output: "stderr"},
			enabled: zapcore.WarnLevel,
			disabled: func() *zapcore.Level {
				l := zapcore.InfoLevel
				return &l
			}(),
		},
		{
			name:    "invalid level defaults to info",
			cfg:     appConfig.LoggerConfig{Level: "invalid-level", Format: "json", Output: "stdout"},
			enabled: zapcore.InfoLevel,
		},
		{
			name:    "file output falls back to stdout",
			cfg:     appConfig.LoggerConfig{Level: "info", Format: "json", Output: "/tmp/stagebot.log"},
			enabled: zapcore.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewWithConfig(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, logger)

			core := logger.Desugar().Core()
			assert.True(t, core.Enabled(tt.enabled))
			if tt.disabled != nil {
				assert.False(t, core.Enabled(*tt.disabled))
			}

			logger.Infow("stage transition", "stage", "awaiting review", "delivery", "abc")
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Run("existing env var", func(t *testing.T) {
		os.Setenv("TEST_KEY", "test_value")
		defer os.Unsetenv("TEST_KEY")

		result := GetEnv("TEST_KEY", "default")
		assert.Equal(t, "test_value", result)
	})

	t.Run("missing env var", func(t *testing.T) {
		os.Unsetenv("TEST_KEY_MISSING")

		result := GetEnv("TEST_KEY_MISSING", "default")
		assert.Equal(t, "default", result)
	})

	t.Run("empty env var", func(t *testing.T) {
		os.Setenv("TEST_KEY_EMPTY", "")
		defer os.Unsetenv("TEST_KEY_EMPTY")

		result := GetEnv("TEST_KEY_EMPTY", "default")
		assert.Equal(t, "default", result)
	})
}

func TestGetEnvInt(t *testing.T) {
	t.Run("valid integer", func(t *testing.T) {
		os.Setenv("TEST_INT", "42")
		defer os.Unsetenv("TEST_INT")

		result := GetEnvInt("TEST_INT", 0)
		assert.Equal(t, 42, result)
	})

	t.Run("invalid integer", func(t *testing.T) {
		os.Setenv("TEST_INT_INVALID", "not_a_number")
		defer os.Unsetenv("TEST_INT_INVALID")

		result := GetEnvInt("TEST_INT_INVALID", 10)
		assert.Equal(t, 10, result)
	})

	t.Run("missing env var", func(t *testing.T) {
		os.Unsetenv("TEST_INT_MISSING")

		result := GetEnvInt("TEST_INT_MISSING", 5)
		assert.Equal(t, 5, result)
	})

	t.Run("negative integer", func(t *testing.T) {
		os.Setenv("TEST_INT_NEG", "-10")
		defer os.Unsetenv("TEST_INT_NEG")

		result := GetEnvInt("TEST_INT_NEG", 0)
		assert.Equal(t, -10, result)
	})
}

func TestGetEnvDuration(t *testing.T) {
	t.Run("valid duration", func(t *testing.T) {
		os.Setenv("TEST_DURATION", "30s")
		defer os.Unsetenv("TEST_DURATION")

		result := GetEnvDuration("TEST_DURATION", 10*time.Second)
		assert.Equal(t, 30*time.Second, result)
	})

	t.Run("invalid duration", func(t *testing.T) {
		os.Setenv("TEST_DURATION_INVALID", "invalid")
		defer os.Unsetenv("TEST_DURATION_INVALID")

		result := GetEnvDuration("TEST_DURATION_INVALID", 5*time.Second)
		assert.Equal(t, 5*time.Second, result)
	})

	t.Run("missing env var", func(t *testing.T) {
		os.Unsetenv("TEST_DURATION_MISSING")

		result := GetEnvDuration("TEST_DURATION_MISSING", 1*time.Minute)
		assert.Equal(t, 1*time.Minute, result)
	})

	t.Run("complex duration", func(t *testing.T) {
		os.Setenv("TEST_DURATION_COMPLEX", "1h30m15s")
		defer os.Unsetenv("TEST_DURATION_COMPLEX")

		result := GetEnvDuration("TEST_DURATION_COMPLEX", time.Second)
		expected := 1*time.Hour + 30*time.Minute + 15*time.Second
		assert.Equal(t, expected, result)
	})
}

func TestGetEnvFirst(t *testing.T) {
	t.Setenv("TEST_FIRST_A", "")
	t.Setenv("TEST_FIRST_B", "b")
	t.Setenv("TEST_FIRST_C", "c")

	assert.Equal(t, "b", GetEnvFirst([]string{"TEST_FIRST_A", "TEST_FIRST_B", "TEST_FIRST_C"}, "default"))
	assert.Equal(t, "default", GetEnvFirst([]string{"TEST_FIRST_A"}, "default"))
	assert.Equal(t, "default", GetEnvFirst(nil, "default"))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "1.5")
	assert.Equal(t, 1.5, GetEnvFloat("TEST_FLOAT", 2.0))

	t.Setenv("TEST_FLOAT", "abc")
	assert.Equal(t, 2.0, GetEnvFloat("TEST_FLOAT", 2.0))
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"))
		assert.NoError(t, err)
	})

	t.Run("does not override existing variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("TEST_DOTENV_NEW=from-file\nTEST_DOTENV_SET=from-file\n"), 0o600))

		t.Setenv("TEST_DOTENV_SET", "from-env")
		t.Setenv("TEST_DOTENV_NEW", "")
		os.Unsetenv("TEST_DOTENV_NEW")

		require.NoError(t, LoadDotEnv(path))
		assert.Equal(t, "from-file", os.Getenv("TEST_DOTENV_NEW"))
		assert.Equal(t, "from-env", os.Getenv("TEST_DOTENV_SET"))
	})
}

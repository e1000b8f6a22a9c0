package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears keys for the test and restores them afterwards.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	unsetenv(t, "ENSEMBLE_PROVIDER", "ENSEMBLE_MAX_ITERATIONS", "ENSEMBLE_TIME_LIMIT", "ENSEMBLE_GROUPCHAT_ROUNDS", "ENSEMBLE_COLORS")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.Provider)
	assert.Equal(t, 2, cfg.MaxIterations)
	assert.Equal(t, 5*time.Minute, cfg.TimeLimit)
	assert.Equal(t, 2, cfg.GroupChatRounds)
	assert.True(t, cfg.Colors)

	ec := cfg.EngineConfig()
	assert.NoError(t, ec.Validate())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ENSEMBLE_MAX_ITERATIONS=4\nENSEMBLE_TIME_LIMIT=90s\n"), 0o600))
	unsetenv(t, "ENSEMBLE_MAX_ITERATIONS", "ENSEMBLE_TIME_LIMIT")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxIterations)
	assert.Equal(t, 90*time.Second, cfg.TimeLimit)
}

func TestLoadConfig_MissingEnvFileIgnored(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("ENSEMBLE_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := loadConfig("")
	assert.ErrorContains(t, err, "invalid configuration")
}

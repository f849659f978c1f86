package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/companion/internal/snapshot"
)

var envKeys = []string{
	"COMPANION_NAME", "COMPANION_DATA_DIR", "COMPANION_SEED",
	"COMPANION_LOG_LEVEL", "COMPANION_LOG_FORMAT",
	"SNAPSHOT_PROVIDER", "SNAPSHOT_PATH", "SNAPSHOT_DSN", "SNAPSHOT_KEEP",
	"HEARTBEAT_TICK", "HEARTBEAT_AUTONOMOUS", "AUTOSAVE_INTERVAL", "TASK_GRACE",
	"LLM_PROVIDER", "LLM_API_KEY", "LLM_MODEL", "LLM_BASE_URL", "LLM_TIMEOUT",
}

// clearEnv blanks every variable the loader reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPANION_DATA_DIR", "/tmp/companion-test")

	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "Echo", c.Name)
	assert.Equal(t, snapshot.ProviderSQLite, c.Snapshot.Provider)
	assert.Equal(t, filepath.Join("/tmp/companion-test", "companion.db"), c.Snapshot.Path)
	assert.Equal(t, 5, c.Snapshot.Keep)
	assert.Equal(t, 10*time.Second, c.Heartbeat.TickInterval)
	assert.Equal(t, 60*time.Second, c.Heartbeat.AutonomousInterval)
	assert.Equal(t, 30*time.Second, c.AutosaveInterval)
	assert.Equal(t, 24*time.Hour, c.TaskGrace)
	assert.Equal(t, "gpt-4o-mini", c.LLM.Model)
	assert.False(t, c.LLM.Enabled())
	assert.Equal(t, int64(0), c.Seed)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPANION_NAME", "Nova")
	t.Setenv("COMPANION_DATA_DIR", "/data")
	t.Setenv("SNAPSHOT_PROVIDER", "file")
	t.Setenv("SNAPSHOT_KEEP", "9")
	t.Setenv("HEARTBEAT_TICK", "2s")
	t.Setenv("HEARTBEAT_AUTONOMOUS", "30s")
	t.Setenv("TASK_GRACE", "1h")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("COMPANION_SEED", "42")
	t.Setenv("COMPANION_LOG_LEVEL", "debug")
	t.Setenv("COMPANION_LOG_FORMAT", "json")

	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "Nova", c.Name)
	assert.Equal(t, snapshot.ProviderFile, c.Snapshot.Provider)
	assert.Equal(t, filepath.Join("/data", "companion.json"), c.Snapshot.Path)
	assert.Equal(t, 9, c.Snapshot.Keep)
	assert.Equal(t, 2*time.Second, c.Heartbeat.TickInterval)
	assert.Equal(t, 30*time.Second, c.Heartbeat.AutonomousInterval)
	assert.Equal(t, time.Hour, c.TaskGrace)
	assert.True(t, c.LLM.Enabled())
	assert.Equal(t, "http://localhost:11434/v1", c.LLM.BaseURL)
	assert.Equal(t, int64(42), c.Seed)

	lc := c.Logger()
	assert.Equal(t, slog.LevelDebug, lc.Level)
	assert.Equal(t, "json", lc.Format)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := map[string][2]string{
		"bad duration":     {"HEARTBEAT_TICK", "soon"},
		"zero tick":        {"HEARTBEAT_TICK", "0s"},
		"negative grace":   {"TASK_GRACE", "-1h"},
		"bad keep":         {"SNAPSHOT_KEEP", "many"},
		"zero keep":        {"SNAPSHOT_KEEP", "0"},
		"unknown provider": {"SNAPSHOT_PROVIDER", "redis"},
		"unknown llm":      {"LLM_PROVIDER", "carrier-pigeon"},
		"bad seed":         {"COMPANION_SEED", "x"},
		"bad log level":    {"COMPANION_LOG_LEVEL", "loud"},
		"bad log format":   {"COMPANION_LOG_FORMAT", "xml"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "companion.env")
	require.NoError(t, os.WriteFile(path, []byte("COMPANION_NAME=Iris\nHEARTBEAT_TICK=5s\n"), 0o644))
	// godotenv does not override variables already set, and clearEnv set
	// them to empty, so unset the ones the file provides.
	os.Unsetenv("COMPANION_NAME")
	os.Unsetenv("HEARTBEAT_TICK")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Iris", c.Name)
	assert.Equal(t, 5*time.Second, c.Heartbeat.TickInterval)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestUseProviderMovesDefaultPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPANION_DATA_DIR", "/data")
	t.Setenv("SNAPSHOT_PROVIDER", "SQLite")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, snapshot.ProviderSQLite, c.Snapshot.Provider)
	assert.Equal(t, filepath.Join("/data", "companion.db"), c.Snapshot.Path)

	c.UseProvider(" File ")
	assert.Equal(t, snapshot.ProviderFile, c.Snapshot.Provider)
	assert.Equal(t, filepath.Join("/data", "companion.json"), c.Snapshot.Path)
	assert.NoError(t, c.Validate())
}

func TestExplicitSnapshotPathSurvivesProviderChange(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNAPSHOT_PATH", "/var/lib/echo.db")

	c, err := FromEnv()
	require.NoError(t, err)
	c.UseProvider("file")
	assert.Equal(t, "/var/lib/echo.db", c.Snapshot.Path)
}

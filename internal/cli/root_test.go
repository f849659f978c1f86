package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcliao/companion/internal/config"
	"github.com/rcliao/companion/internal/snapshot"
)

func setFlags(t *testing.T, provider, db string) {
	t.Helper()
	oldProvider, oldDB := providerFlag, dbPath
	providerFlag, dbPath = provider, db
	t.Cleanup(func() { providerFlag, dbPath = oldProvider, oldDB })
}

func TestProviderFlagMovesDefaultPath(t *testing.T) {
	setFlags(t, "FILE", "")
	cfg := config.Default()
	cfg.DataDir = "/data"

	applySnapshotFlags(cfg)
	assert.Equal(t, snapshot.ProviderFile, cfg.Snapshot.Provider)
	assert.Equal(t, filepath.Join("/data", "companion.json"), cfg.Snapshot.Path)
}

func TestDBFlagWinsOverProvider(t *testing.T) {
	setFlags(t, "file", "/tmp/echo.json")
	cfg := config.Default()

	applySnapshotFlags(cfg)
	assert.Equal(t, snapshot.ProviderFile, cfg.Snapshot.Provider)
	assert.Equal(t, "/tmp/echo.json", cfg.Snapshot.Path)
}

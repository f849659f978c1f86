// Package config loads companion settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rcliao/companion/internal/llm"
	"github.com/rcliao/companion/internal/logger"
	"github.com/rcliao/companion/internal/scheduler"
	"github.com/rcliao/companion/internal/snapshot"
)

// ErrInvalidConfig indicates a setting is out of range or unknown.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Name    string
	DataDir string
	// Seed fixes the simulation's randomness; 0 seeds from the clock.
	Seed int64

	Snapshot  snapshot.Options
	Heartbeat scheduler.Config

	AutosaveInterval time.Duration
	// TaskGrace is how long a due task stays pending before it expires.
	TaskGrace time.Duration

	LLM        llm.Config
	LLMTimeout time.Duration

	LogLevel  string
	LogFormat string

	// snapshotPathSet records an explicit snapshot path, which provider
	// changes must not overwrite.
	snapshotPathSet bool
}

// Default returns the built-in settings rooted at ~/.companion.
func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".companion")
	return &Config{
		Name:    "Echo",
		DataDir: dataDir,
		Snapshot: snapshot.Options{
			Provider: snapshot.ProviderSQLite,
			Path:     defaultSnapshotPath(dataDir, snapshot.ProviderSQLite),
			Keep:     snapshot.DefaultKeep,
		},
		Heartbeat:        scheduler.DefaultConfig(),
		AutosaveInterval: 30 * time.Second,
		TaskGrace:        24 * time.Hour,
		LLM:              llm.Config{Provider: "openai", Model: "gpt-4o-mini"},
		LLMTimeout:       llm.DefaultTimeout,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads envFile if given, otherwise the nearest .env found by
// FindEnvFile, then overlays environment variables on Default.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else if path, found := FindEnvFile(); found {
		_ = godotenv.Load(path)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	c := Default()
	var err error

	c.Name = getEnvOrDefault("COMPANION_NAME", c.Name)
	c.DataDir = getEnvOrDefault("COMPANION_DATA_DIR", c.DataDir)
	c.UseProvider(getEnvOrDefault("SNAPSHOT_PROVIDER", c.Snapshot.Provider))
	if path := os.Getenv("SNAPSHOT_PATH"); path != "" {
		c.UseSnapshotPath(path)
	}
	c.Snapshot.DSN = os.Getenv("SNAPSHOT_DSN")
	if c.Snapshot.Keep, err = intEnv("SNAPSHOT_KEEP", c.Snapshot.Keep); err != nil {
		return nil, err
	}

	if c.Heartbeat.TickInterval, err = durationEnv("HEARTBEAT_TICK", c.Heartbeat.TickInterval); err != nil {
		return nil, err
	}
	if c.Heartbeat.AutonomousInterval, err = durationEnv("HEARTBEAT_AUTONOMOUS", c.Heartbeat.AutonomousInterval); err != nil {
		return nil, err
	}
	if c.AutosaveInterval, err = durationEnv("AUTOSAVE_INTERVAL", c.AutosaveInterval); err != nil {
		return nil, err
	}
	if c.TaskGrace, err = durationEnv("TASK_GRACE", c.TaskGrace); err != nil {
		return nil, err
	}

	c.LLM.Provider = getEnvOrDefault("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.APIKey = os.Getenv("LLM_API_KEY")
	c.LLM.Model = getEnvOrDefault("LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = os.Getenv("LLM_BASE_URL")
	if c.LLMTimeout, err = durationEnv("LLM_TIMEOUT", c.LLMTimeout); err != nil {
		return nil, err
	}

	if v := os.Getenv("COMPANION_SEED"); v != "" {
		if c.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("%w: COMPANION_SEED: %v", ErrInvalidConfig, err)
		}
	}

	c.LogLevel = getEnvOrDefault("COMPANION_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("COMPANION_LOG_FORMAT", c.LogFormat)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// UseProvider selects the snapshot provider. Names are case-insensitive.
// Unless a path was set explicitly, the snapshot path follows the provider:
// companion.json for file, companion.db otherwise.
func (c *Config) UseProvider(name string) {
	c.Snapshot.Provider = strings.ToLower(strings.TrimSpace(name))
	if !c.snapshotPathSet {
		c.Snapshot.Path = defaultSnapshotPath(c.DataDir, c.Snapshot.Provider)
	}
}

// UseSnapshotPath pins the snapshot path regardless of provider.
func (c *Config) UseSnapshotPath(path string) {
	c.Snapshot.Path = path
	c.snapshotPathSet = true
}

func defaultSnapshotPath(dataDir, provider string) string {
	if provider == snapshot.ProviderFile {
		return filepath.Join(dataDir, "companion.json")
	}
	return filepath.Join(dataDir, "companion.db")
}

func (c *Config) Validate() error {
	if c.Heartbeat.TickInterval <= 0 || c.Heartbeat.AutonomousInterval <= 0 {
		return fmt.Errorf("%w: heartbeat intervals must be positive", ErrInvalidConfig)
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("%w: autosave interval must be positive", ErrInvalidConfig)
	}
	if c.TaskGrace < 0 {
		return fmt.Errorf("%w: task grace must not be negative", ErrInvalidConfig)
	}
	if c.Snapshot.Keep <= 0 {
		return fmt.Errorf("%w: snapshot keep must be positive", ErrInvalidConfig)
	}
	switch c.Snapshot.Provider {
	case snapshot.ProviderSQLite, snapshot.ProviderPostgres, snapshot.ProviderMySQL, snapshot.ProviderFile:
	default:
		return fmt.Errorf("%w: %v %q", ErrInvalidConfig, snapshot.ErrUnsupportedProvider, c.Snapshot.Provider)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// Logger returns the logger settings this config describes.
func (c *Config) Logger() logger.Config {
	lc := logger.DefaultConfig()
	lc.Level, _ = logger.ParseLevel(c.LogLevel)
	lc.Format = c.LogFormat
	return lc
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return n, nil
}

// FindEnvFile looks for .env in the working directory and up to five
// parents.
func FindEnvFile() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i < 6; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

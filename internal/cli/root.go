// Package cli implements the companion CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/companion/internal/config"
	"github.com/rcliao/companion/internal/life"
	"github.com/rcliao/companion/internal/llm"
	"github.com/rcliao/companion/internal/llm/openai"
	"github.com/rcliao/companion/internal/logger"
	"github.com/rcliao/companion/internal/scheduler"
	"github.com/rcliao/companion/internal/snapshot"
)

var (
	dbPath       string
	providerFlag string
	envFile      string
	formatFlag   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "companion",
	Short: "A small companion that keeps living while you are away",
	Long: "A companion with moods, energy and memories. It ages on a heartbeat, " +
		"writes a diary of what it did, remembers what you tell it and reminds you of your plans.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Snapshot path (default: $SNAPSHOT_PATH or ~/.companion/companion.db)")
	RootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "", "Snapshot provider: sqlite, postgres, mysql or file")
	RootCmd.PersistentFlags().StringVarP(&envFile, "env", "e", "", "Env file to load (default: nearest .env)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// loadConfig reads settings, applies flag overrides and installs the logger.
func loadConfig() *config.Config {
	cfg, err := config.Load(envFile)
	if err != nil {
		exitErr("load config", err)
	}
	applySnapshotFlags(cfg)
	if err := cfg.Validate(); err != nil {
		exitErr("config", err)
	}
	logger.Init(cfg.Logger())
	return cfg
}

// applySnapshotFlags lets --provider and --db override the environment.
func applySnapshotFlags(cfg *config.Config) {
	if dbPath != "" {
		cfg.UseSnapshotPath(dbPath)
	}
	if providerFlag != "" {
		cfg.UseProvider(providerFlag)
	}
}

func openProvider(ctx context.Context, cfg *config.Config) snapshot.Provider {
	p, err := snapshot.Open(ctx, cfg.Snapshot)
	if err != nil {
		exitErr("open snapshot store", err)
	}
	return p
}

// session is a companion loaded for one command, with what it needs to be
// saved and shut down again.
type session struct {
	cfg       *config.Config
	provider  snapshot.Provider
	companion *life.Companion
	llm       llm.Provider
}

// openSession loads the companion and replays the time it spent offline.
func openSession(ctx context.Context) *session {
	cfg := loadConfig()
	s := &session{cfg: cfg, provider: openProvider(ctx, cfg)}

	opts := life.Options{
		Name:      cfg.Name,
		Seed:      cfg.Seed,
		TaskGrace: cfg.TaskGrace,
	}
	if cfg.LLM.Enabled() {
		client, err := openai.NewClient(cfg.LLM)
		if err != nil {
			exitErr("llm", err)
		}
		s.llm = client
		opts.Replier = llm.NewReplier(client, cfg.LLMTimeout)
	}

	s.companion = life.Open(ctx, s.provider, opts)
	scheduler.New(s.companion, cfg.Heartbeat).CatchUp()
	return s
}

// close saves the companion and releases the store.
func (s *session) close(ctx context.Context) {
	if err := s.companion.Save(ctx, s.provider); err != nil {
		fmt.Fprintf(os.Stderr, "warning: save failed: %v\n", err)
	}
	if s.llm != nil {
		s.llm.Close()
	}
	s.provider.Close()
}

func textOutput() bool {
	return formatFlag == "text"
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

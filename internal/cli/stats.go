package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show snapshot store statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	p := openProvider(cmd.Context(), cfg)
	defer p.Close()

	stats, err := p.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	printJSON(stats)
}

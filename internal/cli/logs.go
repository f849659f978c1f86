package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the companion's diary, newest first",
		Run:   runLogs,
	}
	logsCmd.Flags().IntP("limit", "l", 20, "Max entries (0 for all)")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversation",
		Run:   runHistory,
	}
	historyCmd.Flags().IntP("limit", "l", 20, "Max messages (0 for all)")

	RootCmd.AddCommand(logsCmd, historyCmd)
}

func runLogs(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	ctx := cmd.Context()
	s := openSession(ctx)
	defer s.close(ctx)

	logs := s.companion.Logs(limit)
	if !textOutput() {
		printJSON(logs)
		return
	}
	for _, l := range logs {
		fmt.Printf("%s  %s\n", l.CreatedAt.Local().Format("2006-01-02 15:04"), l.Content)
	}
}

func runHistory(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	ctx := cmd.Context()
	s := openSession(ctx)
	defer s.close(ctx)

	msgs := s.companion.History(limit)
	if !textOutput() {
		printJSON(msgs)
		return
	}
	for _, m := range msgs {
		fmt.Printf("%-9s %s\n", m.Role+":", m.Text)
	}
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/companion/internal/memory"
	"github.com/rcliao/companion/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [query]",
		Short: "Ask the companion what it remembers about something",
		Long:  "Ranks memories by keyword and tag overlap, importance and recency.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRecall,
	}

	cmd.Flags().IntP("limit", "l", memory.DefaultRelatedLimit, "Max results")
	cmd.Flags().Bool("peek", false, "Look without counting it as a recall")

	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	peek, _ := cmd.Flags().GetBool("peek")
	query := strings.Join(args, " ")

	ctx := cmd.Context()
	s := openSession(ctx)
	defer s.close(ctx)

	var found []model.Memory
	if peek {
		found = s.companion.Peek(query, limit)
	} else {
		found = s.companion.Recall(query, limit)
	}

	if len(found) == 0 {
		fmt.Println("[]")
		return
	}
	if !textOutput() {
		printJSON(found)
		return
	}
	for _, m := range found {
		fmt.Printf("%.2f  %s\n", m.Importance, m.Content)
	}
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Say something to the companion",
		Args:  cobra.MinimumNArgs(1),
		Run:   runChat,
	}

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	s := openSession(ctx)
	defer s.close(ctx)

	res, err := s.companion.Chat(ctx, strings.Join(args, " "))
	if err != nil {
		s.close(ctx)
		exitErr("chat", err)
	}

	if textOutput() {
		fmt.Println(res.Reply)
		return
	}
	printJSON(res)
}

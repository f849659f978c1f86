package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show how the companion is doing",
		Run:   runStatus,
	}

	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	s := openSession(ctx)
	defer s.close(ctx)

	st := s.companion.Status()
	if !textOutput() {
		printJSON(st)
		return
	}
	fmt.Printf("%s, alive for %s\n", st.Name, st.Age)
	fmt.Printf("mood:     %s\n", st.Mood.Label)
	fmt.Printf("activity: %s\n", st.Activity.Label)
	fmt.Printf("energy:   %d/100\n", st.Energy)
	fmt.Printf("level:    %d %s (%.0f exp to next)\n", st.Level, st.LevelTitle, st.ExpToNext)
	fmt.Printf("memories: %d\n", st.MemoryCount)
}

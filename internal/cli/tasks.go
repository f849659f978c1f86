package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/companion/internal/model"
)

func init() {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "List reminders the companion picked up from chat",
		Run:   runTasks,
	}
	tasksCmd.Flags().Bool("due", false, "Only pending tasks whose time has come")

	doneCmd := &cobra.Command{
		Use:   "done [task-id]",
		Short: "Mark a reminder as done",
		Args:  cobra.ExactArgs(1),
		Run:   runDone,
	}

	RootCmd.AddCommand(tasksCmd, doneCmd)
}

func runTasks(cmd *cobra.Command, args []string) {
	due, _ := cmd.Flags().GetBool("due")
	ctx := cmd.Context()
	s := openSession(ctx)
	defer s.close(ctx)

	var tasks []model.Task
	if due {
		tasks = s.companion.DueTasks()
	} else {
		tasks = s.companion.Tasks()
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	if !textOutput() {
		printJSON(tasks)
		return
	}
	for _, t := range tasks {
		fmt.Printf("%s  %-8s %s  %s\n", t.ID, t.Status, t.TriggerAt.Local().Format("2006-01-02 15:04"), t.Content)
	}
}

func runDone(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	s := openSession(ctx)
	defer s.close(ctx)

	ok := s.companion.CompleteTask(args[0])
	if !ok {
		s.close(ctx)
		exitErr("done", fmt.Errorf("no task %q", args[0]))
	}
	printJSON(map[string]any{"id": args[0], "status": model.TaskDone})
}
